package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-cosmetics/internal/models"
)

func TestChatReply(t *testing.T) {
	st := newTestStore(t)
	st.addProduct(t, "Kem chống nắng SPF50", 420000, 5)
	st.addProduct(t, "Son kem lì", 250000, 5)
	chat := NewChatService(st.products)

	reply := chat.Reply(models.ChatRequest{Message: "Shop có kem chống nắng không?"})
	assert.True(t, strings.HasPrefix(reply, "Mình tìm thấy: Kem chống nắng SPF50 (420.000đ)"), reply)

	assert.Contains(t, chat.Reply(models.ChatRequest{Message: "Phí giao hàng bao nhiêu?"}), "500.000đ")
	assert.Contains(t, chat.Reply(models.ChatRequest{Message: "xin chào"}), "Xin chào")
	assert.Contains(t, chat.Reply(models.ChatRequest{Message: "qwerty"}), "Xin lỗi")
	assert.NotEmpty(t, chat.Reply(models.ChatRequest{}))
}

func TestChatSummarizeChainsPrevious(t *testing.T) {
	chat := NewChatService(nil)
	msgs := []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "kem chống nắng"},
		{Role: models.ChatRoleBot, Content: "Mình tìm thấy ..."},
		{Role: models.ChatRoleUser, Content: "phí ship"},
	}

	first := chat.Summarize("", msgs)
	assert.Equal(t, "Khách hỏi: kem chống nắng; phí ship", first)

	second := chat.Summarize(first, msgs[:1])
	assert.True(t, strings.HasPrefix(second, first+"\n"))

	long := chat.Summarize(strings.Repeat("a", 2000), msgs)
	assert.Equal(t, maxSummaryRunes, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "phí ship"))

	assert.Equal(t, "giữ nguyên", chat.Summarize("giữ nguyên", nil))
}
