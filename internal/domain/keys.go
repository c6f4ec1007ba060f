package domain

type CtxKey string

const (
	KeyRequestID CtxKey = "RequestID"
	KeyAdminSub  CtxKey = "AdminSubject"
)
