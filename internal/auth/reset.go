package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/corpsite/internal/email"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/security/token"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// resetTokenBytes: 32 bytes random -> 43 chars base64url.
const resetTokenBytes = 32

// RequestReset arranca el flujo de recuperación. SIEMPRE termina bien hacia
// afuera: si el mail no existe o el SMTP falla, el caller no se entera.
// Devuelve el link en claro sólo si EchoResetLinks está prendido (dev).
func (s *Service) RequestReset(ctx context.Context, emailAddr string) (debugLink string) {
	log := logger.From(ctx)

	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("reset: lookup de usuario falló", logger.Err(err))
		}
		// mail desconocido: silencio
		return ""
	}

	plain, err := token.Generate(resetTokenBytes)
	if err != nil {
		log.Error("reset: no se pudo generar token", logger.Err(err))
		return ""
	}

	expires := time.Now().UTC().Add(s.resetTTL)
	if err := s.tickets.CreateResetTicket(ctx, u.ID, token.Hash(plain), expires); err != nil {
		log.Error("reset: no se pudo guardar el ticket", logger.Err(err))
		return ""
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, plain)
	s.sendResetMail(ctx, u, link)
	s.audit.Record(ctx, u.Username, "password_reset_requested", "user:"+u.ID, "")

	if s.EchoResetLinks {
		return link
	}
	return ""
}

func (s *Service) sendResetMail(ctx context.Context, u *store.User, link string) {
	if s.sender == nil || s.tpl == nil {
		logger.From(ctx).Warn("reset: smtp sin configurar, mail no enviado", logger.UserID(u.ID))
		return
	}
	vars := email.ResetVars{Username: u.Username, Link: link, TTL: s.resetTTL.String()}
	htmlBody, textBody, err := s.tpl.RenderReset(vars)
	if err != nil {
		logger.From(ctx).Error("reset: render de template falló", logger.Err(err))
		return
	}
	if err := s.sender.Send(u.Email, "Restablecé tu contraseña", htmlBody, textBody); err != nil {
		// ya logueado por el sender; no propaga
		return
	}
}

// ConfirmReset canjea el token por un cambio de contraseña. La política se
// valida antes de consumir el ticket: un rechazo por contraseña débil no
// quema el token.
func (s *Service) ConfirmReset(ctx context.Context, plainToken, newPassword string) error {
	if err := s.ValidateNewPassword(newPassword); err != nil {
		return err
	}

	userID, err := s.tickets.ConsumeResetTicket(ctx, token.Hash(plainToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// vencido, usado o inventado: misma respuesta
			return ErrInvalidToken
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, userID, hash); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "password_reset_confirmed", "user:"+userID, "")
	return nil
}
