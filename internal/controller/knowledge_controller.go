package controller

import (
	"fmt"
	"strings"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{knowledgeService: knowledgeService}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/knowledge", jwt)
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Get("/:id/download", c.Download)
	h.Delete("/:id", c.Delete)
}

func documentId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, dto.NewNotFoundError("document not found")
	}
	return id, nil
}

func (c *knowledgeController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return dto.NewFileUploadError("file is required", "missing")
	}
	caller := serverutils.CallerFromCtx(ctx)
	res, err := c.knowledgeService.Upload(ctx.Context(), caller.UserId, ctx.FormValue("title"), file)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document uploaded", res))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.List(ctx.Context(), serverutils.CallerFromCtx(ctx).UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents retrieved", res))
}

// Download streams the file; ?inline=true lets browsers preview PDFs.
func (c *knowledgeController) Download(ctx *fiber.Ctx) error {
	id, err := documentId(ctx)
	if err != nil {
		return err
	}
	dl, err := c.knowledgeService.Download(ctx.Context(), serverutils.CallerFromCtx(ctx).UserId, id)
	if err != nil {
		return err
	}

	disposition := "attachment"
	if ctx.QueryBool("inline", false) {
		disposition = "inline"
	}
	if err := ctx.SendFile(dl.Path); err != nil {
		return err
	}
	// SendFile guesses the type from the extension; the sniffed one is authoritative
	ctx.Set(fiber.HeaderContentType, dl.MimeType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`%s; filename=%q; filename*=UTF-8''%s`,
		disposition, dl.FileName, encodeExtValue(dl.FileName)))
	return nil
}

// encodeExtValue percent-encodes every byte outside the RFC 5987 attr-char set.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}

func (c *knowledgeController) Delete(ctx *fiber.Ctx) error {
	id, err := documentId(ctx)
	if err != nil {
		return err
	}
	if err := c.knowledgeService.Delete(ctx.Context(), serverutils.CallerFromCtx(ctx).UserId, id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"success": true})
}
