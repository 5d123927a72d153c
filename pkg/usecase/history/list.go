package history

import (
	"context"

	"github.com/fa-friend/fa/pkg/model"
	"github.com/fa-friend/fa/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
)

const DefaultLimit = 20

// List returns the last limit chat turns of a user, oldest first
func List(
	ctx context.Context,
	repo repository.Repository,
	userID model.UserID,
	limit int,
) ([]*model.Message, error) {
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, goerr.Wrap(model.ErrUserNotFound, "no such user", goerr.V("user_id", userID))
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	messages, err := repo.ListRecentMessages(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	return messages, nil
}
