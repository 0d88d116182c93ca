package account

import "errors"

var (
	ErrSubscriptionCancelFailed = errors.New("account: failed to cancel billing subscription")
	ErrIdentityDeleteFailed     = errors.New("account: failed to delete user identity")
	ErrUserNotFound             = errors.New("account: user not found")
)
