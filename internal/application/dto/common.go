package dto

// Envelope cuerpo uniforme de todas las respuestas de la API.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorBody error con código estable (VALIDATION, INSUFFICIENT_STOCK, ...) y detalles opcionales.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta metadatos de paginación.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// PageRequest paginación por página (1..n) para listados.
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// DefaultPage aplica valores por defecto y tope de Limit.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset desplazamiento equivalente a la página.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OK envelope de éxito.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Paged envelope de éxito con metadatos de página.
func Paged(data any, p PageRequest, total int) Envelope {
	return Envelope{Success: true, Data: data, Meta: &Meta{Page: p.Page, Limit: p.Limit, Total: total}}
}

// Fail envelope de error.
func Fail(code, message string, details map[string]any) Envelope {
	return Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message, Details: details}}
}
