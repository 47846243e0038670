package service

import (
	"fmt"
	"time"
)

type mailMessage struct {
	Subject string
	Text    string
}

func verificationMail(code string, ttl time.Duration) mailMessage {
	return mailMessage{
		Subject: "Mertflix doğrulama kodu",
		Text:    fmt.Sprintf("Doğrulama kodun: %s\nKod %d dakika geçerlidir.", code, minutes(ttl)),
	}
}

func loginCodeMail(code string, ttl time.Duration) mailMessage {
	return mailMessage{
		Subject: "Mertflix giriş onay kodu (2FA)",
		Text:    fmt.Sprintf("Giriş onay kodun: %s\nKod %d dakika geçerlidir.", code, minutes(ttl)),
	}
}

func resetMail(code string, ttl time.Duration) mailMessage {
	return mailMessage{
		Subject: "Mertflix şifre sıfırlama kodu",
		Text:    fmt.Sprintf("Şifre sıfırlama kodun: %s\nKod %d dakika geçerlidir.", code, minutes(ttl)),
	}
}

func emailChangeMail(code string, ttl time.Duration) mailMessage {
	return mailMessage{
		Subject: "Mertflix e-posta değiştirme kodu",
		Text:    fmt.Sprintf("E-posta değiştirme kodun: %s\nKod %d dakika geçerlidir.", code, minutes(ttl)),
	}
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}
