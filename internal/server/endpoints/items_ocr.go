package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quicktalog/quicktalog/internal/api"
	"github.com/quicktalog/quicktalog/internal/catalog"
	"github.com/quicktalog/quicktalog/internal/pipeline"
	"github.com/quicktalog/quicktalog/internal/store"
	"github.com/quicktalog/quicktalog/internal/svcctx"
)

// GenerateOCRRequest is the request body for OCR-text generation. The text
// arrives already extracted by the external image-to-text engine.
type GenerateOCRRequest struct {
	OcrText  string           `json:"ocr_text"`
	FormData catalog.FormMeta `json:"formData"`
}

// GenerateOCRResponse is the response for OCR-text generation.
type GenerateOCRResponse struct {
	RestaurantURL string `json:"restaurantUrl"`
}

// GenerateOCREndpoint handles POST /items/ocr.
type GenerateOCREndpoint struct{}

func (e *GenerateOCREndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/items/ocr", e.handler
}

func (e *GenerateOCREndpoint) RequiresInit() bool { return true }

func (e *GenerateOCREndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateOCRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.OcrText) == "" {
		writeError(w, http.StatusBadRequest, "Ocr_text is required")
		return
	}

	userID, ok := authenticate(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	logger := svcctx.LoggerFrom(ctx)

	cat, err := svcctx.GeneratorFrom(ctx).Generate(ctx, pipeline.Request{
		SourceText: req.OcrText,
		Meta:       req.FormData,
		Source:     catalog.SourceOCR,
		CreatedBy:  userID,
	})
	if err != nil {
		logger.Error("OCR catalogue generation failed", "user", userID, "error", err)
		writeError(w, generationStatus(err), err.Error())
		return
	}

	st := svcctx.StoreFrom(ctx)
	if err := st.InsertCatalogue(ctx, cat); err != nil {
		logger.Error("catalogue insert failed", "slug", cat.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := st.RecordUsage(ctx, store.UsageEvent{
		UserID:        userID,
		CatalogueSlug: cat.Slug,
		Source:        catalog.SourceOCR,
	}); err != nil {
		logger.Error("usage event insert failed", "slug", cat.Slug, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, GenerateOCRResponse{
		RestaurantURL: catalogueURL(svcctx.PublicBaseURLFrom(ctx), cat.Slug),
	})
}

func (e *GenerateOCREndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		textFile string
		name     string
		title    string
		currency string
		theme    string
	)
	cmd := &cobra.Command{
		Use:   "generate-ocr",
		Short: "Generate a catalogue from OCR-extracted text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if textFile == "" {
				return fmt.Errorf("--file is required")
			}
			text, err := os.ReadFile(textFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp GenerateOCRResponse
			err = client.Post(ctx, "/items/ocr", GenerateOCRRequest{
				OcrText: string(text),
				FormData: catalog.FormMeta{
					Name:     name,
					Title:    title,
					Currency: currency,
					Theme:    theme,
				},
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&textFile, "file", "", "Path to a file with OCR text (required)")
	cmd.Flags().StringVar(&name, "name", "", "Business name")
	cmd.Flags().StringVar(&title, "title", "", "Catalogue title")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code")
	cmd.Flags().StringVar(&theme, "theme", "", "Theme name")
	return cmd
}
