package services

import (
	"slices"
	"strings"
	"unicode/utf8"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/pricing"
)

const maxSummaryRunes = 1000

var (
	greetingWords = []string{"xin chào", "chào", "hello", "hi"}
	shippingWords = []string{"ship", "giao hàng", "vận chuyển", "phí giao"}
	stopWords     = map[string]bool{
		"có": true, "không": true, "cho": true, "mình": true, "tôi": true, "em": true,
		"anh": true, "chị": true, "bạn": true, "mua": true, "giá": true, "bao": true,
		"nhiêu": true, "loại": true, "nào": true, "shop": true, "sản": true, "phẩm": true,
		"muốn": true, "tìm": true, "là": true, "gì": true, "với": true, "và": true,
	}
)

// ChatService answers storefront chat messages and condenses transcripts.
type ChatService struct {
	products *ProductService
}

func NewChatService(products *ProductService) *ChatService {
	return &ChatService{products: products}
}

func (s *ChatService) Reply(req models.ChatRequest) string {
	text := strings.ToLower(strings.TrimSpace(req.Message))
	if text == "" {
		return "Bạn cần mình hỗ trợ gì ạ?"
	}
	if containsAny(text, shippingWords) {
		return "Đơn hàng từ " + pricing.FormatVND(pricing.FreeShippingThreshold) +
			" được miễn phí vận chuyển, dưới mức này phí giao hàng là " + pricing.FormatVND(pricing.ShippingFee) + "."
	}
	if matches := s.matchProducts(text, 3); len(matches) > 0 {
		parts := make([]string, 0, len(matches))
		for _, p := range matches {
			parts = append(parts, p.Name+" ("+pricing.FormatVND(p.UnitPrice())+")")
		}
		return "Mình tìm thấy: " + strings.Join(parts, ", ") + "."
	}
	if containsAny(text, greetingWords) {
		return "Xin chào! Mình có thể giúp gì cho bạn?"
	}
	return "Xin lỗi, mình chưa hiểu câu hỏi. Bạn có thể hỏi về sản phẩm, giá hoặc phí giao hàng."
}

// Summarize folds the new messages into the previous summary, keeping the
// most recent part when it grows too long.
func (s *ChatService) Summarize(previous string, messages []models.ChatMessage) string {
	var topics []string
	for _, m := range messages {
		if m.Role != models.ChatRoleUser {
			continue
		}
		if content := strings.TrimSpace(m.Content); content != "" {
			topics = append(topics, content)
		}
	}

	summary := strings.TrimSpace(previous)
	if len(topics) > 0 {
		line := "Khách hỏi: " + strings.Join(topics, "; ")
		if summary == "" {
			summary = line
		} else {
			summary += "\n" + line
		}
	}
	if n := utf8.RuneCountInString(summary); n > maxSummaryRunes {
		r := []rune(summary)
		summary = string(r[n-maxSummaryRunes:])
	}
	return summary
}

func (s *ChatService) matchProducts(text string, limit int) []models.Product {
	var words []string
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, "?!.,")
		if utf8.RuneCountInString(w) >= 2 && !stopWords[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}

	type scored struct {
		product models.Product
		score   int
	}
	var hits []scored
	for _, p := range s.products.All() {
		if !p.Active {
			continue
		}
		name := strings.ToLower(p.Name)
		score := 0
		for _, w := range words {
			if strings.Contains(name, w) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{p, score})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	out := make([]models.Product, 0, limit)
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].product)
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
