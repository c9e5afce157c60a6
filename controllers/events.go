package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/service"
	"github.com/BerniceZTT/carehome_end/utils"
)

// heartbeatInterval 事件流心跳间隔，防止代理断开空闲连接
const heartbeatInterval = 25 * time.Second

// EventsController 服务端推送
type EventsController struct {
	hub *service.EventHub
}

// NewEventsController 创建控制器
func NewEventsController(hub *service.EventHub) *EventsController {
	return &EventsController{hub: hub}
}

// Stream 推送当前用户可见咨询的失效通知。非管理员只收到事件类型和咨询ID，收到后按自己的权限重新拉取
func (ctl *EventsController) Stream(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	events, cancel := ctl.hub.Subscribe(user)
	defer cancel()

	utils.Logger.Info().Str("username", user.Username).Msg("订阅事件流")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			if user.Role != models.UserRoleADMIN {
				ev.Data = nil
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	utils.Logger.Info().Str("username", user.Username).Msg("事件流已断开")
}
