package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"gem_market/internal/domain/entity"
	"gem_market/pkg/contextx"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/httpx/reply"
	"gem_market/pkg/logx"
)

const (
	headerUserID     = "X-User-Id"
	headerCompanyID  = "X-Company-Id"
	headerPrivileged = "X-Privileged"
)

type contextKeyIdentity struct{}

// Identity читает пользователя из заголовков, которые выставляет шлюз
// после аутентификации.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := uuid.Parse(r.Header.Get(headerUserID))
		if err != nil || userID == uuid.Nil {
			reply.Coded(ctx, w, http.StatusUnauthorized, errcodes.Unauthorized, "missing or invalid "+headerUserID)
			return
		}

		identity := entity.Identity{UserID: userID}

		if raw := r.Header.Get(headerCompanyID); raw != "" {
			companyID, err := uuid.Parse(raw)
			if err != nil {
				reply.Coded(ctx, w, http.StatusBadRequest, errcodes.InvalidCompanyID, "invalid "+headerCompanyID)
				return
			}
			identity.CompanyID = companyID
		}

		if raw := r.Header.Get(headerPrivileged); raw != "" {
			privileged, err := strconv.ParseBool(raw)
			if err != nil {
				reply.Coded(ctx, w, http.StatusBadRequest, errcodes.ValidationError, "invalid "+headerPrivileged)
				return
			}
			identity.Privileged = privileged
		}

		ctx = contextx.WithLogger(ctx, logger(ctx).With(logx.Stringer(logx.FieldUserID, userID)))
		ctx = context.WithValue(ctx, contextKeyIdentity{}, identity)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) entity.Identity {
	identity, _ := ctx.Value(contextKeyIdentity{}).(entity.Identity)
	return identity
}
