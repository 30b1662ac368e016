package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyRequestID CtxKey = "RequestID"
)

// Upload folders
const (
	FolderProfilePhotos = "profile-photos"
	FolderResumes       = "resumes"
)
