package serverutils

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const TwilioSignatureHeader = "X-Twilio-Signature"

// TwilioSignature computes Twilio's request signature: HMAC-SHA1 over the
// full URL followed by every POST parameter name and value, sorted by name.
func TwilioSignature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// TwilioSignatureMiddleware rejects webhook calls not signed with authToken.
// baseURL is the public origin Twilio was configured with.
func TwilioSignatureMiddleware(authToken, baseURL string) fiber.Handler {
	baseURL = strings.TrimRight(baseURL, "/")
	return func(ctx *fiber.Ctx) error {
		params := make(map[string]string)
		ctx.Request().PostArgs().VisitAll(func(k, v []byte) {
			params[string(k)] = string(v)
		})

		want := TwilioSignature(authToken, baseURL+ctx.OriginalURL(), params)
		got := ctx.Get(TwilioSignatureHeader)
		if got == "" || !hmac.Equal([]byte(got), []byte(want)) {
			return fiber.NewError(fiber.StatusForbidden, "Invalid Twilio signature")
		}
		return ctx.Next()
	}
}
