// Package errors 定义业务错误码和错误处理
package errors

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，便于 errors.Is 匹配派生出的错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown          = New(1000, "Error desconocido")
	ErrInvalidParams    = New(1001, "Parámetros inválidos")
	ErrNotFound         = New(1002, "Recurso no encontrado")
	ErrAlreadyExists    = New(1003, "El recurso ya existe")
	ErrDatabaseError    = New(1004, "Error de base de datos")
	ErrCacheError       = New(1005, "Error de caché")
	ErrInternalError    = New(1006, "Error interno")
	ErrExternalService  = New(1007, "Error de servicio externo")
	ErrRateLimitExceed  = New(1008, "Demasiadas solicitudes")
	ErrOperationFailed  = New(1009, "La operación falló")
	ErrDatabaseNotReady = New(1010, "La base de datos no está lista: faltan tablas requeridas")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized      = New(2000, "No autenticado")
	ErrTokenExpired      = New(2001, "La sesión expiró")
	ErrTokenInvalid      = New(2002, "Token inválido")
	ErrTokenRefreshFail  = New(2003, "No se pudo renovar la sesión")
	ErrPermissionDenied  = New(2004, "Permisos insuficientes")
	ErrAccountDisabled   = New(2005, "La cuenta está deshabilitada")
	ErrPasswordError     = New(2006, "Correo o contraseña incorrectos")
	ErrEmailExists       = New(2007, "El correo ya está registrado")
	ErrAccountNotFound   = New(2008, "La cuenta no existe")
	ErrRegistrationClose = New(2009, "El registro de administradores está cerrado")
)

// 房间错误码 (3000-3999)
var (
	ErrRoomNotFound              = New(3000, "Habitación no encontrada")
	ErrRoomNumberExists          = New(3001, "El número de habitación ya existe")
	ErrRoomInactive              = New(3002, "La habitación está inactiva")
	ErrRoomNotAvailable          = New(3003, "La habitación no está disponible")
	ErrRoomOccupied              = New(3004, "La habitación tiene una estadía activa")
	ErrRoomStatusConflict        = New(3005, "El estado de la habitación cambió, recargue e intente de nuevo")
	ErrRoomStatusNotFound        = New(3006, "Estado de habitación no encontrado")
	ErrAccommodationTypeNotFound = New(3007, "Tipo de alojamiento no encontrado")
	ErrInvalidRoomAction         = New(3008, "Acción de habitación inválida")
	ErrInvalidRateTier           = New(3009, "Tarifa inválida")
	ErrTypeNotWholeUnit          = New(3010, "El tipo de alojamiento no se alquila completo, elija una habitación")
)

// 入住错误码 (4000-4999)
var (
	ErrStayNotFound          = New(4000, "Estadía no encontrada")
	ErrStayInvalidTransition = New(4001, "Transición de estado no permitida")
	ErrBookingConflict       = New(4002, "Las fechas se cruzan con otra estadía")
	ErrStayNotFullyPaid      = New(4003, "La estadía no está pagada en su totalidad")
	ErrStayBalancePending    = New(4004, "Existe saldo pendiente")
	ErrInvalidDates          = New(4005, "Fechas inválidas")
	ErrInvalidDiscount       = New(4006, "El descuento debe ser mayor que cero")
	ErrCapacityExceeded      = New(4007, "El número de personas supera la capacidad")
	ErrStayTargetRequired    = New(4008, "Debe indicar habitación o tipo de alojamiento")
	ErrCheckInDateInFuture   = New(4009, "La fecha de ingreso es futura, registre una reserva")
)

// 支付错误码 (5000-5999)
var (
	ErrPaymentNotFound       = New(5000, "Pago no encontrado")
	ErrPaymentMethodNotFound = New(5001, "Medio de pago no encontrado")
	ErrInvalidAmount         = New(5002, "El monto debe ser mayor que cero")
	ErrPaymentNotAllowed     = New(5003, "La estadía no admite pagos")
)

// 客人错误码 (6000-6999)
var (
	ErrGuestNotFound       = New(6000, "Huésped no encontrado")
	ErrGuestDocumentExists = New(6001, "El documento ya está registrado")
)

// 员工与设置错误码 (7000-7999)
var (
	ErrEmployeeNotFound = New(7000, "Empleado no encontrado")
	ErrRoleNotFound     = New(7001, "Rol no encontrado")
	ErrSettingsInvalid  = New(7002, "Configuración inválida")
	ErrExportFailed     = New(7003, "No se pudo generar la exportación")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// PostgreSQL 错误码
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgUndefinedTable     = "42P01"
)

// FromDB 将数据库错误转换为应用错误
// 排他约束冲突视为预订冲突，缺表视为数据库未就绪
func FromDB(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return ErrBookingConflict.WithError(err)
		case pgUniqueViolation:
			return ErrAlreadyExists.WithError(err)
		case pgUndefinedTable:
			return ErrDatabaseNotReady.WithError(err)
		}
	}
	return ErrDatabaseError.WithError(err)
}

// IsCanceled 判断是否为请求取消或超时导致的错误
func IsCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
