package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/signintech/gopdf"

	"medlama-backend/internal/chat"
)

// Service renders a conversation transcript as a PDF study document.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Common font locations checked in order; the first loadable wins.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

func (s *Service) Transcript(c *chat.Conversation) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF, ensure ttf-dejavu is installed: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 18); err != nil {
		return nil, err
	}
	pdf.Cell(nil, c.Title)
	pdf.Br(25)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Topic: %s", c.Topic))
	pdf.Br(14)
	pdf.Cell(nil, fmt.Sprintf("Started: %s", c.CreatedAt.Format("02 Jan 2006 15:04")))
	pdf.Br(14)
	pdf.Cell(nil, fmt.Sprintf("Messages: %d", len(c.Messages)))
	pdf.Br(22)

	for _, msg := range c.Messages {
		if err := pdf.SetFont("DejaVu", "", 12); err != nil {
			return nil, err
		}
		label := "You"
		if msg.Role == chat.RoleAssistant {
			label = "MedLama"
		}
		pdf.Cell(nil, fmt.Sprintf("%s - %s", label, msg.Timestamp.Format("15:04")))
		pdf.Br(14)

		if err := pdf.SetFont("DejaVu", "", 10); err != nil {
			return nil, err
		}
		lines, _ := pdf.SplitText(msg.Content, 500)
		for _, line := range lines {
			if pdf.GetY() > 790 {
				pdf.AddPage()
			}
			pdf.Cell(nil, line)
			pdf.Br(12)
		}
		pdf.Br(8)
	}

	pdf.SetY(820)
	if err := pdf.SetFont("DejaVu", "", 8); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Exported %s. Educational material, not medical advice.", time.Now().Format("02 Jan 2006")))

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
