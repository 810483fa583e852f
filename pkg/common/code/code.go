package code

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrCode int

const Success ErrCode = 0

const (
	// 1xxx generic
	UnDefineErr ErrCode = 1000 + iota
	ParamErr
	RecordNotFound
	CreateDataErr
	UpdateDataErr
	DeleteDataErr
	QueryRecordErr
	RPCHttpErr
	RPCHttpCodeErr
	ExportErr
)

const (
	// 2xxx auth
	UnLogin ErrCode = 2000 + iota
	LoginFormatErr
	InvalidToken
	PermissionDenied
	LoginFailed
	UserAlreadyExists
	UserNotFound
	UserDisabled
	SignTokenErr
	LoginThrottled
)

const (
	// 3xxx inventory
	InvalidItemType ErrCode = 3000 + iota
	ItemNotFound
	InvalidQuantity
	ItemInUse
	ItemCreateErr
	ItemUpdateErr
	ItemDeleteErr
	ItemQueryErr
	CASQueryErr
	CASNotFound
)

const (
	// 4xxx workflow
	RequestNotFound ErrCode = 4000 + iota
	RequestEmpty
	RequestNotPending
	RequestNotApproved
	RequestAlreadyIssued
	RequestSubmitErr
	RequestDecideErr
	FacultyNotFound
	InsufficientStock
	IssueErr
	IssuedItemNotFound
	AlreadyReturned
	ReturnErr
)

const (
	// 5xxx activity / notify
	ActivityLogErr ErrCode = 5000 + iota
	NotificationErr
	NotifyRateLimited
	NotifyActionAlreadyRegistryErr
	NotifySendMsgErr
)

var codeMsg = map[ErrCode]string{
	Success:        "success",
	UnDefineErr:    "undefined error",
	ParamErr:       "parameter error",
	RecordNotFound: "record not found",
	CreateDataErr:  "create data error",
	UpdateDataErr:  "update data error",
	DeleteDataErr:  "delete data error",
	QueryRecordErr: "query record error",
	RPCHttpErr:     "remote http request error",
	RPCHttpCodeErr: "remote http status error",
	ExportErr:      "export error",

	UnLogin:           "not logged in",
	LoginFormatErr:    "authorization format error",
	InvalidToken:      "invalid token",
	PermissionDenied:  "permission denied",
	LoginFailed:       "email or password incorrect",
	UserAlreadyExists: "user already exists",
	UserNotFound:      "user not found",
	UserDisabled:      "user disabled",
	SignTokenErr:      "sign token error",
	LoginThrottled:    "too many login attempts",

	InvalidItemType: "invalid item type",
	ItemNotFound:    "inventory item not found",
	InvalidQuantity: "invalid quantity",
	ItemInUse:       "inventory item has open issuances",
	ItemCreateErr:   "create inventory item error",
	ItemUpdateErr:   "update inventory item error",
	ItemDeleteErr:   "delete inventory item error",
	ItemQueryErr:    "query inventory error",
	CASQueryErr:     "cas query error",
	CASNotFound:     "cas not found",

	RequestNotFound:      "request not found",
	RequestEmpty:         "request has no line items",
	RequestNotPending:    "request is not pending",
	RequestNotApproved:   "request is not approved",
	RequestAlreadyIssued: "request already issued",
	RequestSubmitErr:     "submit request error",
	RequestDecideErr:     "decide request error",
	FacultyNotFound:      "faculty in charge not found",
	InsufficientStock:    "insufficient stock",
	IssueErr:             "issue request error",
	IssuedItemNotFound:   "issued item not found",
	AlreadyReturned:      "issued item already returned",
	ReturnErr:            "return issued item error",

	ActivityLogErr:                 "activity log error",
	NotificationErr:                "notification error",
	NotifyRateLimited:              "notification rate limited",
	NotifyActionAlreadyRegistryErr: "notify action already registered",
	NotifySendMsgErr:               "notify send message error",
}

var codeStatus = map[ErrCode]int{
	ParamErr:        http.StatusBadRequest,
	InvalidItemType: http.StatusBadRequest,
	InvalidQuantity: http.StatusBadRequest,
	RequestEmpty:    http.StatusBadRequest,
	FacultyNotFound: http.StatusBadRequest,

	UnLogin:        http.StatusUnauthorized,
	LoginFormatErr: http.StatusUnauthorized,
	InvalidToken:   http.StatusUnauthorized,
	LoginFailed:    http.StatusUnauthorized,
	UserDisabled:   http.StatusForbidden,

	PermissionDenied: http.StatusForbidden,

	RecordNotFound:     http.StatusNotFound,
	UserNotFound:       http.StatusNotFound,
	ItemNotFound:       http.StatusNotFound,
	RequestNotFound:    http.StatusNotFound,
	IssuedItemNotFound: http.StatusNotFound,
	CASNotFound:        http.StatusNotFound,

	UserAlreadyExists:    http.StatusConflict,
	ItemInUse:            http.StatusConflict,
	RequestNotPending:    http.StatusConflict,
	RequestNotApproved:   http.StatusConflict,
	RequestAlreadyIssued: http.StatusConflict,
	InsufficientStock:    http.StatusConflict,
	AlreadyReturned:      http.StatusConflict,

	NotifyRateLimited: http.StatusTooManyRequests,
	LoginThrottled:    http.StatusTooManyRequests,
}

func (c ErrCode) String() string {
	if msg, ok := codeMsg[c]; ok {
		return msg
	}
	return fmt.Sprintf("error code %d", int(c))
}

func (c ErrCode) Error() string {
	return c.String()
}

func (c ErrCode) Int() int {
	return int(c)
}

// HTTPStatus maps a code to the status the web layer replies with.
func (c ErrCode) HTTPStatus() int {
	if c == Success {
		return http.StatusOK
	}
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (c ErrCode) WithErr(err error) error {
	if err == nil {
		return c
	}
	return &Error{Code: c, Msg: c.String(), cause: err}
}

func (c ErrCode) WithMsg(msg string) error {
	return &Error{Code: c, Msg: msg}
}

func (c ErrCode) WithMsgf(format string, args ...any) error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, args...)}
}

type Error struct {
	Code  ErrCode
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	c, ok := target.(ErrCode)
	return ok && c == e.Code
}

// From finds the outermost ErrCode in an error chain. Errors without a code
// are reported as UnDefineErr.
func From(err error) (ErrCode, string) {
	if err == nil {
		return Success, Success.String()
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code, e.Msg
	}
	var c ErrCode
	if errors.As(err, &c) {
		return c, c.String()
	}
	return UnDefineErr, err.Error()
}

// Wrap keeps client-facing codes (4xx) of err intact and attributes every
// other failure to c, so callers see the failing operation's own code.
func Wrap(c ErrCode, err error) error {
	if err == nil {
		return nil
	}
	inner, _ := From(err)
	if inner != UnDefineErr && inner.HTTPStatus() < http.StatusInternalServerError {
		return err
	}
	return c.WithErr(err)
}
