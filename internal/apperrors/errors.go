package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the actor is authenticated but lacks permission for the action.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates the request lacks valid authentication.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired indicates a stored refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrConfiguration indicates a required server-side setting is missing or invalid.
var ErrConfiguration = errors.New("missing or invalid server configuration")
