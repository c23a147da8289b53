package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const bearerPrefix = "bearer "

// AccessValidator validates a Bearer access token and returns the caller's user ID.
// *security.TokenVerifier implements it.
type AccessValidator interface {
	ValidateAccess(token string) (userID string, err error)
}

// AuthUnary returns a unary server interceptor that resolves the caller from the Bearer access token in
// gRPC metadata and stores the user ID in context. Methods in publicMethods are served without a user;
// every other method is rejected with Unauthenticated when the token is missing or fails validation,
// or when tokens is nil.
func AuthUnary(tokens AccessValidator, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		userID, err := authenticate(ctx, tokens)
		if err == nil {
			return handler(WithUserID(ctx, userID), req)
		}
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		return nil, err
	}
}

func authenticate(ctx context.Context, tokens AccessValidator) (string, error) {
	token := extractBearer(ctx)
	if token == "" || tokens == nil {
		return "", status.Error(codes.Unauthenticated, "missing authorization")
	}
	userID, err := tokens.ValidateAccess(token)
	if err != nil || userID == "" {
		return "", status.Error(codes.Unauthenticated, "invalid or expired access token")
	}
	return userID, nil
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
