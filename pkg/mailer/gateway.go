package mailer

// Gateway defines the interface for delivering password reset OTP emails
type Gateway interface {
	// SendOTP delivers an OTP code to the given address.
	// Returns the provider message ID and an error if delivery failed.
	SendOTP(email, otpCode string) (string, error)

	// GetName returns the name of the gateway implementation
	GetName() string
}
