// Package wa builds WhatsApp click-to-chat links and the order messages
// prefilled into them.
package wa

import (
	"fmt"
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

// Normalize strips everything but digits and rewrites a leading national
// "0" prefix to the Indonesian country code "62". Numbers already starting
// with 62 (including "+62...") are kept.
func Normalize(no string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(no) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

// Link returns the wa.me deep link for no. The text query is appended only
// when msg is non-empty.
func Link(no, msg string) string {
	link := baseURL + Normalize(no)
	if msg != "" {
		link += "?text=" + escape(msg)
	}
	return link
}

// OrderMessage is the prefilled chat text for ordering. With an item name
// it asks for quantity and address; without one it asks which item.
func OrderMessage(vendorName, itemName string) string {
	if itemName != "" {
		return fmt.Sprintf(`Halo, saya ingin pesan "%s". Jumlah: __. Alamat: __.`, itemName)
	}
	return fmt.Sprintf(`Halo, saya ingin tanya/pesan produk dari "%s". Produk: __. Jumlah: __.`, vendorName)
}

// escape percent-encodes s with %20 for spaces.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
