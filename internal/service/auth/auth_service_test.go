package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

func setupAuthService(t *testing.T, allowSignup bool) (*Service, *gorm.DB, *jwt.Manager) {
	t.Helper()
	db := testutil.NewDB(t)
	manager := jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "hotel-test",
	})
	return NewService(db, manager, crypto.NewHasher(bcrypt.MinCost), allowSignup), db, manager
}

func TestRegisterAdminAndLogin(t *testing.T) {
	svc, _, manager := setupAuthService(t, true)
	ctx := context.Background()

	res, err := svc.RegisterAdmin(ctx, &RegisterRequest{
		Email: "Gerencia@Hotel.co", Password: "clave-segura", FirstName: "Marta", LastName: "Rojas",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Employee.Role)
	assert.Equal(t, "gerencia@hotel.co", res.Employee.Email)

	claims, err := manager.ParseAccessToken(res.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.Employee.ID, claims.EmployeeID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = svc.RegisterAdmin(ctx, &RegisterRequest{Email: "gerencia@hotel.co", Password: "otra-clave", FirstName: "X"})
	assert.ErrorIs(t, err, errors.ErrEmailExists)

	login, err := svc.Login(ctx, &LoginRequest{Email: "gerencia@hotel.co", Password: "clave-segura", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, res.Employee.ID, login.Employee.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "gerencia@hotel.co", Password: "mala"})
	assert.ErrorIs(t, err, errors.ErrPasswordError)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nadie@hotel.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, errors.ErrPasswordError)
}

func TestRegisterAdmin_Closed(t *testing.T) {
	svc, _, _ := setupAuthService(t, false)
	_, err := svc.RegisterAdmin(context.Background(), &RegisterRequest{Email: "a@b.co", Password: "clave-segura", FirstName: "A"})
	assert.ErrorIs(t, err, errors.ErrRegistrationClose)
}

func TestLogin_LinksPrecreatedEmployee(t *testing.T) {
	svc, db, _ := setupAuthService(t, true)
	ctx := context.Background()

	// 管理员预先创建的前台档案，账号首次登录时绑定
	recep := testutil.CreateEmployee(t, db, models.RoleReceptionist)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return CreateAccount(ctx, tx, svc.hasher, recep, "recepcion-123")
	}))

	res, err := svc.Login(ctx, &LoginRequest{Email: recep.Email, Password: "recepcion-123"})
	require.NoError(t, err)
	assert.Equal(t, recep.ID, res.Employee.ID)
	assert.Equal(t, models.RoleReceptionist, res.Employee.Role)

	require.NoError(t, db.Model(&models.Employee{}).Where("id = ?", recep.ID).Update("is_active", false).Error)
	_, err = svc.Login(ctx, &LoginRequest{Email: recep.Email, Password: "recepcion-123"})
	assert.ErrorIs(t, err, errors.ErrAccountDisabled)
}

func TestRefreshProfileAndPassword(t *testing.T) {
	svc, db, manager := setupAuthService(t, true)
	ctx := context.Background()

	res, err := svc.RegisterAdmin(ctx, &RegisterRequest{Email: "admin@hotel.co", Password: "clave-segura", FirstName: "Ana"})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, res.TokenPair.RefreshToken)
	require.NoError(t, err)
	_, err = manager.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, res.TokenPair.AccessToken)
	assert.ErrorIs(t, err, errors.ErrTokenRefreshFail)
	_, err = svc.Refresh(ctx, "basura")
	assert.ErrorIs(t, err, errors.ErrTokenRefreshFail)

	profile, err := svc.Profile(ctx, res.Employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.FullName)

	err = svc.ChangePassword(ctx, res.Employee.ID, &ChangePasswordRequest{OldPassword: "incorrecta", NewPassword: "nueva-clave-1"})
	assert.ErrorIs(t, err, errors.ErrPasswordError)

	require.NoError(t, svc.ChangePassword(ctx, res.Employee.ID, &ChangePasswordRequest{OldPassword: "clave-segura", NewPassword: "nueva-clave-1"}))
	_, err = svc.Login(ctx, &LoginRequest{Email: "admin@hotel.co", Password: "nueva-clave-1"})
	require.NoError(t, err)

	// 被停用后刷新失败
	require.NoError(t, db.Model(&models.Employee{}).Where("id = ?", res.Employee.ID).Update("is_active", false).Error)
	_, err = svc.Refresh(ctx, res.TokenPair.RefreshToken)
	assert.ErrorIs(t, err, errors.ErrAccountDisabled)
}
