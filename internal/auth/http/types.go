package http

import "time"

type loginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
	User     any    `json:"user"`
}

type adminLoginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	TwoFA     bool       `json:"twoFactorRequired"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type adminVerifyRequest struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Code  string `json:"code"`
}

type userView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	TenantID  string     `json:"tenantId,omitempty"`
	PumpID    string     `json:"pumpId,omitempty"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type twoFASetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
	QR         string `json:"qr,omitempty"`
}

type twoFAEnableRequest struct {
	Code string `json:"code"`
}

type twoFAEnableResponse struct {
	BackupCodes []string `json:"backupCodes"`
}

type twoFADisableRequest struct {
	Password string `json:"password"`
}

type twoFAStatusResponse struct {
	Enabled          bool `json:"enabled"`
	PendingSetup     bool `json:"pendingSetup"`
	BackupCodesCount int  `json:"backupCodesCount"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type createStaffRequest struct {
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type okResponse struct {
	OK bool `json:"ok"`
}
