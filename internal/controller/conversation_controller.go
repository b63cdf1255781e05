package controller

import (
	"context"
	"strings"

	"ampersand-agent/internal/dto"
	"ampersand-agent/internal/pkg/serverutils"
	"ampersand-agent/internal/service"
	"ampersand-agent/pkg/rag/executor"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	PushEvent(ctx *fiber.Ctx) error
	Memory(ctx *fiber.Ctx) error
	Modes(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IChatbotService
}

func NewConversationController(service service.IChatbotService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	r.Get("/modes", c.Modes)

	h := r.Group("/conversations/:conversationId")
	h.Post("/queries", c.Ask)
	h.Post("/events", c.PushEvent)
	h.Get("/memory", c.Memory)
}

func (c *conversationController) Ask(ctx *fiber.Ctx) error {
	conversationId, err := conversationID(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reply, err := c.service.Ask(ctx.UserContext(), executor.InboundQuery{
		ConversationID: conversationId,
		Query:          req.Query,
		ForceSearch:    req.ForceSearch,
		ModeName:       req.Mode,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate reply", dto.AskResponse{
		ConversationId: conversationId,
		Reply:          reply,
	}))
}

func (c *conversationController) PushEvent(ctx *fiber.Ctx) error {
	conversationId, err := conversationID(ctx)
	if err != nil {
		return err
	}

	var req dto.InboundEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	event := service.InboundEvent{
		ChannelID:   conversationId,
		AuthorIsBot: req.AuthorIsBot,
		Content:     req.Content,
	}
	if req.Reference != nil {
		event.Reference = &service.ReferencedMessage{
			Content:      req.Reference.Content,
			AuthorIsSelf: req.Reference.AuthorIsSelf,
		}
	}

	replies := &bufferedReplier{}
	if err := c.service.HandleEvent(ctx.UserContext(), event, replies); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle event", dto.InboundEventResponse{
		Replies: replies.texts,
	}))
}

func (c *conversationController) Memory(ctx *fiber.Ctx) error {
	conversationId, err := conversationID(ctx)
	if err != nil {
		return err
	}

	window, summary := c.service.Memory(ctx.UserContext(), conversationId)

	res := dto.MemoryResponse{
		ConversationId: conversationId,
		Window:         make([]dto.MessageDTO, 0, len(window)),
		Summary:        summary,
	}
	for _, m := range window {
		res.Window = append(res.Window, dto.MessageDTO{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get memory", res))
}

func (c *conversationController) Modes(ctx *fiber.Ctx) error {
	modes := c.service.Modes()

	res := make([]dto.ModeResponse, 0, len(modes))
	for _, m := range modes {
		res = append(res, dto.ModeResponse{
			Name:        m.Name,
			Label:       m.Label(),
			Description: m.Description,
			Triggers:    m.Triggers,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get modes", res))
}

func conversationID(ctx *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(ctx.Params("conversationId"))
	if id == "" || len(id) > 128 {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid conversation id")
	}
	return id, nil
}

// bufferedReplier collects what the service would have posted to a channel.
type bufferedReplier struct {
	texts []string
}

func (b *bufferedReplier) Reply(_ context.Context, text string) error {
	b.texts = append(b.texts, text)
	return nil
}

func (b *bufferedReplier) Send(_ context.Context, text string) error {
	b.texts = append(b.texts, text)
	return nil
}
