package error_notificator

import "context"

type Service struct {
	infra Notificator
}

// NewService — infra == nil означает, что алерты выключены
func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

func (s *Service) Notify(ctx context.Context, source string, err error, details string) error {
	if s.infra == nil {
		return nil
	}
	return s.infra.Notify(ctx, source, err, details)
}
