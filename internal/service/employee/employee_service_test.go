package employee

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

func TestService_CreateAndList(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, crypto.NewHasher(bcrypt.MinCost))
	ctx := context.Background()
	admin := testutil.CreateEmployee(t, db, models.RoleAdmin)

	created, err := svc.Create(ctx, admin.ID, &CreateRequest{
		Email: " Camarera@Hotel.co ", FirstName: "Rosa", Role: models.RoleCleaning, Password: "limpieza-123",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "camarera@hotel.co", created.Email)
	assert.Equal(t, models.RoleCleaning, created.Role)

	var stored models.Employee
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.NotNil(t, stored.AuthID)

	_, err = svc.Create(ctx, admin.ID, &CreateRequest{Email: "x@hotel.co", FirstName: "X", Role: "Gerente"}, "-")
	assert.ErrorIs(t, err, errors.ErrRoleNotFound)

	_, err = svc.Create(ctx, admin.ID, &CreateRequest{
		Email: "camarera@hotel.co", FirstName: "Otra", Role: models.RoleCleaning, Password: "limpieza-456",
	}, "-")
	assert.ErrorIs(t, err, errors.ErrEmailExists)

	list, total, err := svc.List(ctx, &ListRequest{Role: models.RoleCleaning}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Rosa", list[0].FirstName)

	var logs int64
	db.Model(&models.OperationLog{}).Where("module = ?", "employee").Count(&logs)
	assert.Equal(t, int64(1), logs)

	roles, err := svc.Roles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, len(models.RoleNames))
}

func TestService_Update(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, crypto.NewHasher(bcrypt.MinCost))
	ctx := context.Background()
	admin := testutil.CreateEmployee(t, db, models.RoleAdmin)
	recep := testutil.CreateEmployee(t, db, models.RoleReceptionist)

	role := models.RoleMaintenance
	inactive := false
	updated, err := svc.Update(ctx, admin.ID, recep.ID, &UpdateRequest{Role: &role, IsActive: &inactive}, "-")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaintenance, updated.Role)
	assert.False(t, updated.IsActive)

	_, err = svc.Update(ctx, admin.ID, admin.ID, &UpdateRequest{IsActive: &inactive}, "-")
	assert.ErrorIs(t, err, errors.ErrInvalidParams)

	_, err = svc.Update(ctx, admin.ID, admin.ID, &UpdateRequest{Role: &role}, "-")
	assert.ErrorIs(t, err, errors.ErrInvalidParams)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, errors.ErrEmployeeNotFound)
}

func TestService_OperationLogs(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db, crypto.NewHasher(bcrypt.MinCost))
	ctx := context.Background()
	admin := testutil.CreateEmployee(t, db, models.RoleAdmin)
	recep := testutil.CreateEmployee(t, db, models.RoleReceptionist)

	role := models.RoleCleaning
	_, err := svc.Update(ctx, admin.ID, recep.ID, &UpdateRequest{Role: &role}, "10.0.0.1")
	require.NoError(t, err)

	logs, total, err := svc.OperationLogs(ctx, &AuditRequest{Module: "employee", TargetID: &recep.ID}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, admin.ID, logs[0].EmployeeID)
	assert.Equal(t, "10.0.0.1", logs[0].IP)

	_, total, err = svc.OperationLogs(ctx, &AuditRequest{Module: "settings"}, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
}
