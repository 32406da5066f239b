package registry

import "errors"

var (
	// Query errors
	ErrInvalidArgument = errors.New("registry: invalid argument")
	ErrNotFound        = errors.New("registry: token not found")

	// Authorization errors
	ErrUnauthorized = errors.New("registry: caller is not owner nor approved")

	// Transfer errors
	ErrInvalidOwner      = errors.New("registry: from does not match token owner")
	ErrInvalidRecipient  = errors.New("registry: recipient is the null identity")
	ErrRecipientRejected = errors.New("registry: recipient did not acknowledge transfer")

	// Lifecycle errors
	ErrAlreadyExists = errors.New("registry: token already minted")
)
