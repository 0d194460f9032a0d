// Package i18n translates error and violation codes for API clients.
package i18n

import (
	"golang.org/x/text/language"
)

// DefaultLang is used when the client sends no usable Accept-Language.
const DefaultLang = "es"

var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[string]map[string]string{
	"es": {
		"required":                  "Obligatorio",
		"must_be_positive":          "Debe ser mayor que cero",
		"must_not_be_negative":      "No puede ser negativo",
		"invalid_value":             "Valor no válido",
		"invalid_email":             "Correo no válido",
		"too_short":                 "Demasiado corto",
		"too_large":                 "Valor demasiado grande",
		"validation_failed":         "Datos inválidos",
		"unknown_products":          "Uno o más productos no existen",
		"order_not_found":           "Pedido no encontrado",
		"product_not_found":         "Producto no encontrado",
		"admin_not_found":           "Administrador no encontrado",
		"order_already_paid":        "El pedido ya está pagado",
		"illegal_status_transition": "Cambio de estado no permitido",
		"email_already_registered":  "Ese correo ya está registrado",
		"invalid_credentials":       "Credenciales inválidas",
		"unauthorized":              "No autorizado",
		"invalid_json":              "JSON inválido",
		"empty_body":                "Cuerpo vacío",
		"amount_out_of_range":       "Importe fuera de rango",
		"invalid_id":                "Identificador inválido",
		"internal_error":            "Error interno del servidor",
	},
	"en": {
		"required":                  "Required",
		"must_be_positive":          "Must be greater than zero",
		"must_not_be_negative":      "Must not be negative",
		"invalid_value":             "Invalid value",
		"invalid_email":             "Invalid email",
		"too_short":                 "Too short",
		"too_large":                 "Value too large",
		"validation_failed":         "Invalid data",
		"unknown_products":          "One or more products do not exist",
		"order_not_found":           "Order not found",
		"product_not_found":         "Product not found",
		"admin_not_found":           "Admin not found",
		"order_already_paid":        "Order is already paid",
		"illegal_status_transition": "Status change not allowed",
		"email_already_registered":  "Email already registered",
		"invalid_credentials":       "Invalid credentials",
		"unauthorized":              "Unauthorized",
		"invalid_json":              "Invalid JSON",
		"empty_body":                "Empty body",
		"amount_out_of_range":       "Amount out of range",
		"invalid_id":                "Invalid identifier",
		"internal_error":            "Internal server error",
	},
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLang
	}
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()
	if _, ok := messages[base.String()]; ok {
		return base.String()
	}
	return DefaultLang
}

// T returns the message for code, falling back to Spanish and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang][code]; ok {
		return m
	}
	if m, ok := messages[DefaultLang][code]; ok {
		return m
	}
	return code
}
