package server

import "github.com/gofiber/fiber/v2"

var (
	ErrSameToken      = fiber.NewError(fiber.StatusBadRequest, "in and out tokens cannot be the same")
	ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amount is required")
	ErrNoRoute        = fiber.NewError(fiber.StatusNotFound, "no route found")
	ErrQuoteFailed    = fiber.NewError(fiber.StatusInternalServerError, "quote failed")
)

func newTokenRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" token is required")
}

func newUnknownToken(field, query string) error {
	return fiber.NewError(fiber.StatusBadRequest, "unknown "+field+" token: "+query)
}

func newInvalidAmount(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid amount: "+err.Error())
}
