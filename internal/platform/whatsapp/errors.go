package whatsapp

// CodeHint translates a provider error code into a human-readable hint
// for operators. Codes not in the table get a generic message.
func CodeHint(code int) string {
	switch code {
	case 190:
		return "access token invalid or expired; generate a new token"
	case 368:
		return "recipient has no WhatsApp or the account is temporarily blocked"
	case 131000:
		return "generic provider failure; the WhatsApp account may be suspended"
	case 131026:
		return "message undeliverable; recipient may have blocked the number"
	case 131047:
		return "outside the 24h customer service window; a template message is required"
	case 131056:
		return "rate limited by the provider; pace down sends to this recipient"
	case 100:
		return "invalid parameter; check the phone number id configuration"
	default:
		return "unrecognized provider error code; consult the Cloud API reference"
	}
}
