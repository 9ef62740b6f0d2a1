package pkg

import "errors"

// Kind 稳定的错误类别，由边界层决定映射到哪个 HTTP 状态码
type Kind int8

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindValidation:
		return "BAD_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}

type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is 没有 Code 的哨兵按类别匹配，带 Code 的只匹配自身
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

func NewError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// KindOf 返回错误链上第一个 *Error 的类别，没有则视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// 类别哨兵：errors.Is(err, ErrConflict) 对所有冲突类错误成立
var (
	ErrNotFound     = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrForbidden    = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrConflict     = &Error{Kind: KindConflict, Msg: "conflict"}
	ErrValidation   = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Msg: "unauthorized"}
)

var (
	ErrInvalidID          = NewError(KindValidation, "INVALID_ID", "invalid id")
	ErrUserNotFound       = NewError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrInvalidCredential  = NewError(KindNotFound, "INVALID_CREDENTIAL", "invalid api key")
	ErrInvalidName        = NewError(KindValidation, "INVALID_NAME", "name must be 1-32 letters, digits or underscores")
	ErrNameTaken          = NewError(KindConflict, "NAME_TAKEN", "name is already taken")
	ErrSelfFollow         = NewError(KindConflict, "SELF_FOLLOW", "cannot follow yourself")
	ErrAlreadyFollowing   = NewError(KindConflict, "ALREADY_FOLLOWING", "already following this user")
	ErrNotFollowing       = NewError(KindNotFound, "NOT_FOLLOWING", "not following this user")
	ErrTweetNotFound      = NewError(KindNotFound, "TWEET_NOT_FOUND", "tweet not found")
	ErrNotTweetAuthor     = NewError(KindForbidden, "NOT_TWEET_AUTHOR", "you can only delete your own tweets")
	ErrEmptyContent       = NewError(KindValidation, "EMPTY_CONTENT", "tweet content cannot be empty")
	ErrContentTooLong     = NewError(KindValidation, "CONTENT_TOO_LONG", "tweet content exceeds 280 characters")
	ErrTooManyAttachments = NewError(KindValidation, "TOO_MANY_ATTACHMENTS", "too many attachments")
	ErrAlreadyLiked       = NewError(KindConflict, "ALREADY_LIKED", "tweet already liked")
	ErrNotLiked           = NewError(KindNotFound, "NOT_LIKED", "tweet is not liked")
	ErrBatchTooLarge      = NewError(KindValidation, "BATCH_TOO_LARGE", "too many ids in one batch")
	ErrAttachmentNotFound = NewError(KindNotFound, "ATTACHMENT_NOT_FOUND", "attachment not found")
	ErrAttachmentOwner    = NewError(KindForbidden, "ATTACHMENT_FORBIDDEN", "attachment was uploaded by another user")
	ErrAttachmentBound    = NewError(KindConflict, "ATTACHMENT_BOUND", "attachment is already attached to a tweet")
	ErrEmptyUpload        = NewError(KindValidation, "EMPTY_UPLOAD", "no file provided")
	ErrUploadTooLarge     = NewError(KindValidation, "UPLOAD_TOO_LARGE", "file exceeds the size limit")
	ErrUnsupportedMedia   = NewError(KindValidation, "UNSUPPORTED_MEDIA", "file type not allowed, only images are allowed")
)
