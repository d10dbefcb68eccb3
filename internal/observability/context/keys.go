package context

import "context"

type contextKey string

const (
	requestIDKey      contextKey = "observability_request_id"
	serviceIDKey      contextKey = "observability_service_id"
	notificationIDKey contextKey = "observability_notification_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithServiceID(ctx context.Context, serviceID string) context.Context {
	if ctx == nil || serviceID == "" {
		return ctx
	}
	return context.WithValue(ctx, serviceIDKey, serviceID)
}

func ServiceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(serviceIDKey).(string)
	return value
}

func WithNotificationID(ctx context.Context, notificationID string) context.Context {
	if ctx == nil || notificationID == "" {
		return ctx
	}
	return context.WithValue(ctx, notificationIDKey, notificationID)
}

func NotificationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(notificationIDKey).(string)
	return value
}
