package domain

// Client facing messages. The web client matches on some of them, so they
// stay byte-for-byte stable.
const (
	MsgAccountCreated     = "Account created successfully."
	MsgWelcomeBack        = "Welcome back %s"
	MsgLoggedOut          = "Logged out successfully."
	MsgProfileUpdated     = "Profile updated successfully."
	MsgEmailTaken         = "User already exist with this email."
	MsgBadCredentials     = "Incorrect email or password."
	MsgRoleMismatch       = "Account doesn't exist with current role."
	MsgAccountNotFound    = "User not found"
	MsgNotAuthenticated   = "User not authenticated"
	MsgInvalidToken       = "Invalid token"
	MsgSessionExpired     = "Session expired"
	MsgCurrentAccount     = "Account fetched successfully."
	MsgUnsupportedFile    = "Unsupported file type"
	MsgFileTooLarge       = "File is too large"
	MsgInvalidRequestBody = "Invalid request body"
)

// Login failure reasons reported to AuthEvents.
const (
	ReasonUnknownEmail = "unknown_email"
	ReasonBadPassword  = "bad_password"
	ReasonRoleMismatch = "role_mismatch"
)
