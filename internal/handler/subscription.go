package handler

import (
	"net/http"

	"YourTube/internal/middleware"
	"YourTube/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler interface {
	ToggleSubscription(c *gin.Context)
	GetChannelSubscribers(c *gin.Context)
	GetSubscribedChannels(c *gin.Context)
	GetSubscriptionStatus(c *gin.Context)
}

type subscriptionHandler struct {
	SubscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) SubscriptionHandler {
	return &subscriptionHandler{SubscriptionService: subscriptionService}
}

func (h *subscriptionHandler) ToggleSubscription(c *gin.Context) {
	channelID, ok := parseID(c, "channel_id", "频道ID")
	if !ok {
		return
	}
	subscribed, err := h.SubscriptionService.ToggleSubscription(c.Request.Context(), middleware.UserID(c), channelID)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	message := "已取消订阅"
	if subscribed {
		message = "订阅成功"
	}
	sendResponse(c, http.StatusOK, gin.H{"subscribed": subscribed}, message)
}

func (h *subscriptionHandler) GetChannelSubscribers(c *gin.Context) {
	channelID, ok := parseID(c, "channel_id", "频道ID")
	if !ok {
		return
	}
	list, err := h.SubscriptionService.GetChannelSubscribers(c.Request.Context(), channelID)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, list, "成功获取订阅者")
}

func (h *subscriptionHandler) GetSubscribedChannels(c *gin.Context) {
	subscriberID, ok := parseID(c, "subscriber_id", "用户ID")
	if !ok {
		return
	}
	list, err := h.SubscriptionService.GetSubscribedChannels(c.Request.Context(), subscriberID)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, list, "成功获取订阅的频道")
}

func (h *subscriptionHandler) GetSubscriptionStatus(c *gin.Context) {
	channelID, ok := parseID(c, "channel_id", "频道ID")
	if !ok {
		return
	}
	status, err := h.SubscriptionService.GetSubscriptionStatus(c.Request.Context(), middleware.UserID(c), channelID)
	if err != nil {
		sendErrorResponse(c, err)
		return
	}
	sendResponse(c, http.StatusOK, status, "成功获取订阅状态")
}
