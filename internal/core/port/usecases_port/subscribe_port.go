package usecases_port

import "context"

type SubscribeUseCase interface {
	Execute(ctx context.Context, email, source string) (created bool, err error)
}
