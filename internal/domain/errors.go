package domain

import "errors"

// Sentinel errors for the dispatch pipeline. Services wrap these so
// controllers can map them to HTTP status codes with errors.Is.
var (
	ErrInvalidTitle      = errors.New("title is required and must be at most 255 characters")
	ErrInvalidBody       = errors.New("body is required and must be at most 5000 characters")
	ErrInvalidDeviceType = errors.New("device type must be ios or android")
	ErrNoRecipients      = errors.New("no recipients resolved")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateDelivery = errors.New("delivery record already exists")
	ErrDispatchFailed    = errors.New("dispatch failed")
)
