package devlink

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Errors carrying a "messages" metadata entry render as the list envelope
// {"errors":[{"msg":...}]}, everything else renders as {"msg":...}.
var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("Invalid Credentials", errors.CategoryAuth).
				WithCode(errors.CodeBadRequest).
				WithMetadata(map[string]any{"messages": []string{"Invalid Credentials"}})

	// ErrEmailTaken rejects a second registration for an email.
	ErrEmailTaken = errors.New("User already exists", errors.CategoryConflict).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"messages": []string{"User already exists"}})

	// ErrTokenExpired is returned by the token service once the expiry
	// passed, regardless of signature validity.
	ErrTokenExpired = errors.New("Token is expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	// ErrTokenMalformed covers every other verification failure: bad
	// signature, truncated token, wrong signing method, garbage input.
	ErrTokenMalformed = errors.New("Token is not valid", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	// ErrNotAuthorized rejects mutations by a valid identity that does not
	// own the record.
	ErrNotAuthorized = errors.New("User not authorized", errors.CategoryAuthz).
				WithCode(errors.CodeUnauthorized)

	ErrNoProfileForUser = errors.New("There is no profile for this user", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)

	ErrProfileNotFound = errors.New("Profile not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)

	ErrPostNotFound = errors.New("Post not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound)

	ErrCommentNotFound = errors.New("Comment does not exist", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)

	ErrAlreadyLiked = errors.New("Post already liked", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)

	ErrNotYetLiked = errors.New("Post has not yet been liked", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)

	ErrNoGithubProfile = errors.New("No Github profile found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)

	ErrNoEmptyString = errors.New("value must not be an empty string", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)

	ErrMismatchedHashAndPassword = errors.New("password does not match hash", errors.CategoryAuth).
					WithCode(errors.CodeBadRequest)
)

// WrapValidationErrors converts an ozzo validation result into a rich error
// that renders as the {"errors":[{"msg":...}]} envelope. Field order is not
// significant, messages are sorted by field name to stay deterministic.
func WrapValidationErrors(err error) error {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		return errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest)
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, verrs[field].Error())
	}

	return errors.New("payload validation failed", errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{"messages": msgs})
}

// ValidationMessages extracts the message list carried by a rich error, nil
// when the error should render as a single {"msg":...} document.
func ValidationMessages(err *errors.Error) []string {
	if err == nil || err.Metadata == nil {
		return nil
	}

	switch msgs := err.Metadata["messages"].(type) {
	case []string:
		return msgs
	case []any:
		out := make([]string, 0, len(msgs))
		for _, m := range msgs {
			if s, ok := m.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	return nil
}
