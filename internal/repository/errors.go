// Package repository holds the data access layer for saved travel plans.
// Sentinel errors let handlers map failures to HTTP statuses without
// inspecting driver errors.
package repository

import "errors"

// ErrPlanNotFound is returned when no plan matches both the plan id and the
// requesting user id. A plan owned by someone else is reported the same way
// as a plan that does not exist.
var ErrPlanNotFound = errors.New("plan not found")
