package v1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"job-portal-backend/config"
	"job-portal-backend/internal/delivery/http/response"
	"job-portal-backend/internal/domain"
	"job-portal-backend/pkg/apperror"
	"job-portal-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// formOverheadBytes leaves room for the text fields and multipart framing on
// top of the file size limit.
const formOverheadBytes = 1 << 20

type AccountHandler struct {
	authUC domain.AuthUsecase
	config *config.Config
}

// AccountLimits are per-route middlewares, usually rate limiters.
type AccountLimits struct {
	Login    gin.HandlerFunc
	Register gin.HandlerFunc
}

func NewAccountHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, cfg *config.Config, limits AccountLimits) {
	handler := &AccountHandler{
		authUC: authUC,
		config: cfg,
	}

	// Public Routes
	public.POST("/register", withLimit(limits.Register, handler.Register)...)
	public.POST("/login", withLimit(limits.Login, handler.Login)...)
	public.GET("/logout", handler.Logout)
	public.POST("/logout", handler.Logout)

	// Protected Routes
	protected.POST("/profile/update", handler.UpdateProfile)
	protected.PUT("/profile/update", handler.UpdateProfile)
	protected.PUT("/update-profile", handler.UpdateProfile)
	protected.GET("/me", handler.Me)
}

func withLimit(limit gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit, h}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register accepts multipart form data: fullname, email, phoneNumber,
// password, role and an optional profile photo in "file".
func (h *AccountHandler) Register(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		_ = c.Error(err)
		return
	}

	photo, err := h.readAsset(c, security.AssetImage)
	if err != nil {
		_ = c.Error(err)
		return
	}

	err = h.authUC.Register(c.Request.Context(), domain.RegisterInput{
		Fullname:    c.PostForm("fullname"),
		Email:       c.PostForm("email"),
		PhoneNumber: c.PostForm("phoneNumber"),
		Password:    c.PostForm("password"),
		Role:        c.PostForm("role"),
		Photo:       photo,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, domain.MsgAccountCreated, nil)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest(domain.MsgInvalidRequestBody))
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), domain.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.config.CookieName, result.Token, int(h.config.CookieMaxAge.Seconds()), "/", h.config.CookieDomain, h.config.CookieSecure, true)

	response.User(c, http.StatusOK, fmt.Sprintf(domain.MsgWelcomeBack, result.Account.Fullname), result.Account)
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server side.
func (h *AccountHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.config.CookieName, "", -1, "/", h.config.CookieDomain, h.config.CookieSecure, true)

	response.Success(c, http.StatusOK, domain.MsgLoggedOut, nil)
}

// UpdateProfile accepts multipart form data: fullname, email, phoneNumber,
// bio, skills (comma separated) and an optional resume in "file".
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		_ = c.Error(err)
		return
	}

	resume, err := h.readAsset(c, security.AssetResume)
	if err != nil {
		_ = c.Error(err)
		return
	}

	view, err := h.authUC.UpdateProfile(c.Request.Context(), c.GetString(string(domain.KeyUserID)), domain.UpdateProfileInput{
		Fullname:    c.PostForm("fullname"),
		Email:       c.PostForm("email"),
		PhoneNumber: c.PostForm("phoneNumber"),
		Bio:         c.PostForm("bio"),
		Skills:      c.PostForm("skills"),
		Resume:      resume,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.User(c, http.StatusOK, domain.MsgProfileUpdated, view)
}

func (h *AccountHandler) Me(c *gin.Context) {
	view, err := h.authUC.GetCurrentAccount(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.User(c, http.StatusOK, domain.MsgCurrentAccount, view)
}

// parseForm bounds the request body and parses it as multipart or url-encoded.
func (h *AccountHandler) parseForm(c *gin.Context) error {
	limit := h.config.MaxUploadBytes + formOverheadBytes
	if c.Request.ContentLength > limit {
		return apperror.BadRequest(domain.MsgFileTooLarge)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var err error
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		err = c.Request.ParseMultipartForm(limit)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.BadRequest(domain.MsgFileTooLarge)
		}
		return apperror.BadRequest(domain.MsgInvalidRequestBody)
	}
	return nil
}

// readAsset loads the optional "file" part and checks it against the allowed
// types for kind. A missing file is not an error.
func (h *AccountHandler) readAsset(c *gin.Context, kind security.AssetKind) (*domain.Asset, error) {
	if c.Request.MultipartForm == nil {
		return nil, nil
	}
	fileHeader, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest(domain.MsgInvalidRequestBody)
	}
	if fileHeader.Size > h.config.MaxUploadBytes {
		return nil, apperror.BadRequest(domain.MsgFileTooLarge)
	}

	data, err := readFormFile(fileHeader, h.config.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	contentType, err := security.Check(kind, fileHeader.Filename, data)
	if err != nil {
		return nil, apperror.BadRequest(domain.MsgUnsupportedFile)
	}

	return &domain.Asset{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func readFormFile(fileHeader *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.BadRequest(domain.MsgInvalidRequestBody)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, apperror.BadRequest(domain.MsgInvalidRequestBody)
	}
	if int64(len(data)) > limit {
		return nil, apperror.BadRequest(domain.MsgFileTooLarge)
	}
	return data, nil
}
