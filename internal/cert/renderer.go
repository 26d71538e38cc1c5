// Package cert renders participation certificates as PDF documents.
//
// Rendering is a pure function of the certificate data and the template
// assets on disk: identical inputs produce identical bytes (the PDF creation
// date is pinned to the issue date). The rendered document is written to a
// temporary file that the caller owns and must remove after hand-off.
package cert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// backgroundAsset is the template image drawn behind the certificate text.
// Its absence is non-fatal: the certificate is rendered without it.
const backgroundAsset = "certificate_bg.png"

// optimizedWidth is the pixel width template images are downscaled to before
// embedding. Larger sources only bloat the PDF without visible gain.
const optimizedWidth = 1600

// Data carries the fields printed on a certificate.
type Data struct {
	Name         string
	SubmissionID uint
	IssuedAt     time.Time
}

// PDFRenderer draws certificates with a fixed layout and an optional
// background template image.
//
// Template assets are resolved at a fixed precedence: the configured asset
// directory, then the process working directory, then a server-relative
// fallback. The first existing path wins.
type PDFRenderer struct {
	AssetDir string
	Issuer   string

	mu        sync.Mutex
	optimized map[string]string // source path → downscaled copy
}

// NewPDFRenderer constructs a renderer reading template assets from assetDir.
func NewPDFRenderer(assetDir, issuer string) *PDFRenderer {
	return &PDFRenderer{
		AssetDir:  assetDir,
		Issuer:    issuer,
		optimized: make(map[string]string),
	}
}

// Render produces the certificate PDF for d and returns the path of the
// temporary file holding it. The caller owns the file and removes it after
// upload/attachment.
func (r *PDFRenderer) Render(ctx context.Context, d Data) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(d.Name) == "" {
		return "", errors.New("certificate name is empty")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(d.IssuedAt)
	pdf.SetModificationDate(d.IssuedAt)
	pdf.SetTitle(fmt.Sprintf("Certificate #%d", d.SubmissionID), true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	if bg := r.resolveAsset(backgroundAsset); bg != "" {
		img := r.optimize(bg)
		pdf.ImageOptions(img, 0, 0, pageW, pageH, false,
			gofpdf.ImageOptions{ImageType: "", ReadDpi: true}, 0, "")
	}

	caser := cases.Title(language.English)

	pdf.SetFont("Helvetica", "B", 34)
	pdf.SetTextColor(40, 40, 60)
	pdf.SetY(50)
	pdf.CellFormat(pageW, 16, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	pdf.Ln(8)
	pdf.CellFormat(pageW, 8, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 28)
	pdf.Ln(4)
	pdf.CellFormat(pageW, 14, caser.String(strings.TrimSpace(d.Name)), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.Ln(6)
	pdf.CellFormat(pageW, 8,
		fmt.Sprintf("has participated in this program. Issued on %s.", d.IssuedAt.Format("2 January 2006")),
		"", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "I", 11)
	pdf.Ln(14)
	pdf.CellFormat(pageW, 6, r.Issuer, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetY(pageH - 20)
	pdf.CellFormat(pageW, 5, fmt.Sprintf("Certificate ID: %d", d.SubmissionID), "", 1, "C", false, 0, "")

	if pdf.Err() {
		return "", fmt.Errorf("render certificate %d: %w", d.SubmissionID, pdf.Error())
	}

	f, err := os.CreateTemp("", fmt.Sprintf("certificate-%d-*.pdf", d.SubmissionID))
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("render certificate %d: %w", d.SubmissionID, err)
	}
	return path, nil
}

// resolveAsset returns the first existing path for name across the fixed
// precedence chain, or "" when no candidate exists.
func (r *PDFRenderer) resolveAsset(name string) string {
	candidates := []string{
		filepath.Join(r.AssetDir, name),
		name,
		filepath.Join("server", "assets", name),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	log.Warn().Str("asset", name).Msg("template asset not found; rendering without it")
	return ""
}

// optimize returns a downscaled copy of the source image, memoized by source
// path. Any processing failure falls back to the unmodified source; the
// cache only affects render cost, never delivery correctness.
func (r *PDFRenderer) optimize(src string) string {
	r.mu.Lock()
	if cached, ok := r.optimized[src]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	img, err := imaging.Open(src)
	if err != nil {
		log.Warn().Err(err).Str("asset", src).Msg("image decode failed; using source as-is")
		return src
	}
	if img.Bounds().Dx() > optimizedWidth {
		img = imaging.Resize(img, optimizedWidth, 0, imaging.Lanczos)
	}

	out := filepath.Join(os.TempDir(), "certassets-"+strings.ReplaceAll(filepath.Base(src), string(filepath.Separator), "_"))
	if err := imaging.Save(img, out); err != nil {
		log.Warn().Err(err).Str("asset", src).Msg("image optimize failed; using source as-is")
		return src
	}

	r.mu.Lock()
	r.optimized[src] = out
	r.mu.Unlock()
	return out
}
