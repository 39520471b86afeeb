package shopapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/webserver"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeartbeatInterval keeps idle event streams open through proxies
var HeartbeatInterval = 15 * time.Second

func registerEventRoutes() {
	webserver.PublicGET("/events", streamEvents)
}

// streamEvents writes change events as server-sent events until the client goes away.
// Each event only says which collection changed; clients refetch.
func streamEvents(c echo.Context) error {
	ch, cancel := GetAppContext(c).Stream().Subscribe(32)
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	w.Flush()

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			w.Flush()
		case ev, open := <-ch:
			if !open {
				return nil
			}
			data, err := jsoniter.MarshalToString(ev)
			if err != nil {
				zap.L().Warn("skip unencodable event", zap.String("namespace", "shopapi"), zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
