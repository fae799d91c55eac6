package handlers

import (
	"specter-vision/models"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// writeEvent writes one SSE frame ("event: <kind>", "data: <json>") and flushes it.
func writeEvent(w gin.ResponseWriter, ev models.StreamEvent) error {
	err := sse.Encode(w, sse.Event{
		Event: string(ev.Kind),
		Data:  ev.Data,
	})
	if err != nil {
		return err
	}
	w.Flush()
	return nil
}
