package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	imagepkg "github.com/youruser/deckbuilder/internal/image"
)

// Handlers serves the deck API. It keeps no per-user state: each request
// carries the deck fragment and each response returns the new one.
type Handlers struct {
	engine  *deck.Engine
	baseURL string
	qrSize  int
	logger  *zap.Logger
}

func NewHandlers(engine *deck.Engine, baseURL string, qrSize int, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{engine: engine, baseURL: baseURL, qrSize: qrSize, logger: logger}
}

type deckRequest struct {
	Fragment  string  `json:"fragment"`
	Card      string  `json:"card"`
	Name      string  `json:"name"`
	Primary   *string `json:"primary"`
	Secondary *string `json:"secondary"`
}

type deckResponse struct {
	Fragment string      `json:"fragment"`
	ShareURL string      `json:"share_url"`
	Deck     *deck.State `json:"deck"`
	View     deck.View   `json:"view"`
}

// load decodes a fragment and makes it legal against the catalog.
func (h *Handlers) load(fragment string) *deck.State {
	s := deck.DecodeURL(fragment)
	h.engine.Restore(s)
	return s
}

func (h *Handlers) respond(c *gin.Context, s *deck.State) {
	c.JSON(http.StatusOK, h.body(s))
}

func (h *Handlers) body(s *deck.State) deckResponse {
	return deckResponse{
		Fragment: deck.EncodeURL(s),
		ShareURL: deck.ShareURL(h.baseURL, s),
		Deck:     s,
		View:     h.engine.View(s),
	}
}

// reject reports a refused mutation along with the unchanged deck.
func (h *Handlers) reject(c *gin.Context, s *deck.State, err error) {
	var le *deck.LegalityError
	if !errors.As(err, &le) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":    le.Message(),
		"reason":   le.Code(),
		"fragment": deck.EncodeURL(s),
		"deck":     s,
	})
}

func (h *Handlers) bind(c *gin.Context) (deckRequest, bool) {
	var req deckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

// health
func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cards": h.engine.Catalog().Len()})
}

func (h *Handlers) listCards(c *gin.Context) {
	var criteria cards.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key, err := cards.ParseSortKey(string(criteria.SortBy))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	criteria.SortBy = key
	s := h.load(c.Query("deck"))
	out := cards.FilterAndSort(h.engine.Catalog(), s, criteria)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "cards": out})
}

func (h *Handlers) getDeck(c *gin.Context) {
	h.respond(c, h.load(c.Query("fragment")))
}

func (h *Handlers) addCard(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	s := h.load(req.Fragment)
	err := h.engine.AddCard(s, req.Card)
	deck.RecordMutation("add", err)
	if err != nil {
		h.reject(c, s, err)
		return
	}
	h.respond(c, s)
}

func (h *Handlers) removeCard(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	s := h.load(req.Fragment)
	h.engine.RemoveCard(s, req.Card)
	deck.RecordMutation("remove", nil)
	h.respond(c, s)
}

func (h *Handlers) setFactions(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	s := h.load(req.Fragment)
	// an omitted field keeps the deck's current selection
	primary, secondary := s.Primary, s.Secondary
	if req.Primary != nil {
		primary = cards.Faction(*req.Primary)
	}
	if req.Secondary != nil {
		secondary = cards.Faction(*req.Secondary)
	}
	err := h.engine.SetFactions(s, primary, secondary)
	deck.RecordMutation("factions", err)
	if err != nil {
		h.reject(c, s, err)
		return
	}
	h.respond(c, s)
}

func (h *Handlers) setName(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	s := h.load(req.Fragment)
	h.engine.SetDeckName(s, req.Name)
	deck.RecordMutation("name", nil)
	h.respond(c, s)
}

func (h *Handlers) exportDeck(c *gin.Context) {
	s := h.load(c.Query("fragment"))
	c.String(http.StatusOK, deck.ExportDecklist(h.engine.Catalog(), s))
}

func (h *Handlers) qrSizeParam(c *gin.Context) int {
	size := h.qrSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v >= 64 && v <= 2048 {
		size = v
	}
	return size
}

// qr endpoint returns a PNG of a QR code for the deck's share link
func (h *Handlers) deckQR(c *gin.Context) {
	s := h.load(c.Query("fragment"))
	b, err := imagepkg.GenerateQRPNG(deck.ShareURL(h.baseURL, s), h.qrSizeParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// deck image: faction split, mana curve and the share QR in one PNG
func (h *Handlers) deckImage(c *gin.Context) {
	s := h.load(c.Query("fragment"))
	qr, err := imagepkg.GenerateQRImage(deck.ShareURL(h.baseURL, s), h.qrSize)
	if err != nil {
		h.logger.Warn("share image without qr", zap.Error(err))
		qr = nil
	}
	out := imagepkg.ComposeShareImage(h.engine.Catalog(), s, qr)
	buf := new(bytes.Buffer)
	if err := imagepkg.EncodePNG(buf, out); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
