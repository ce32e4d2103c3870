package dto

// Envelope is the uniform response body: {success, data, message}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func OK(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

type SendNotificationRequest struct {
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	RecipientIDs []int64 `json:"recipient_ids"`
}

type SendAllNotificationRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdatePushTokenRequest struct {
	PushToken  string `json:"push_token"`
	DeviceType string `json:"device_type"`
}
