package domain

import "unicode/utf8"

const (
	TitleMaxLen = 255
	BodyMaxLen  = 5000

	// DataTypeNotification is the structured-data type tag carried by
	// every push payload produced by dispatch.
	DataTypeNotification = "notification"
)

const (
	DeviceTypeIOS     = "ios"
	DeviceTypeAndroid = "android"
)

func IsValidDeviceType(value string) bool {
	switch value {
	case DeviceTypeIOS, DeviceTypeAndroid:
		return true
	default:
		return false
	}
}

// ValidateContent checks notification title and body against the dispatch
// preconditions. Lengths are counted in characters, not bytes.
func ValidateContent(title, body string) error {
	if title == "" || utf8.RuneCountInString(title) > TitleMaxLen {
		return ErrInvalidTitle
	}
	if body == "" || utf8.RuneCountInString(body) > BodyMaxLen {
		return ErrInvalidBody
	}
	return nil
}
