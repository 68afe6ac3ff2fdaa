package util

import (
	"esign-web-server/internal/model"
	"net"
	"net/http"
	"strings"
)

// ClientIP : адрес из RemoteAddr. Заголовки прокси клиент может подделать, поэтому
// они учитываются только через middleware.RealIP, который включается настройкой trust_proxy
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestMetaFromRequest : метаданные запроса для журнала доступа и аудита подписей
func RequestMetaFromRequest(r *http.Request) model.RequestMeta {
	return model.RequestMeta{
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
		Location:  strings.TrimSpace(r.Header.Get("X-Client-Location")),
	}
}
