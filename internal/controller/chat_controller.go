package controller

import (
	"io"
	"strings"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, optionalJwt fiber.Handler)
	SendMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router, optionalJwt fiber.Handler) {
	r.Post("/chat", optionalJwt, c.SendMessage)
}

// SendMessage accepts JSON, or multipart/form-data when an image is attached.
// @Summary Send a message to the coach
// @Tags Chat
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} dto.SendChatResponse
// @Router /api/chat [post]
func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return dto.NewValidationError("invalid request body")
	}

	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		image, err := readImage(ctx)
		if err != nil {
			return err
		}
		req.Image = image
	}

	caller := serverutils.CallerFromCtx(ctx)
	if !req.IsGuest && caller.IsGuest {
		return dto.NewAuthenticationError("login required")
	}

	res, err := c.chatService.SendMessage(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func readImage(ctx *fiber.Ctx) (*dto.ChatImage, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, dto.NewValidationError("invalid multipart body")
	}
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, dto.NewFileUploadError("cannot read image", err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, dto.NewFileUploadError("cannot read image", err.Error())
	}
	return &dto.ChatImage{
		FileName: fh.Filename,
		MimeType: fh.Header.Get(fiber.HeaderContentType),
		Data:     data,
	}, nil
}
