package device

type RegisterDeviceRequest struct {
	Email             string `json:"email" binding:"required,email"`
	PublicKey         string `json:"public_key" binding:"required,notblank"`
	DeviceFingerprint string `json:"device_fingerprint" binding:"max=255"`
}

type ResetDeviceRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

type DeviceStatusResponse struct {
	EmployeeID        string  `json:"employee_id"`
	Bound             bool    `json:"bound"`
	DeviceFingerprint *string `json:"device_fingerprint,omitempty"`
	BoundAt           *string `json:"bound_at,omitempty"`
}
