package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studyhive/study_go_server/internal/model"
	"github.com/studyhive/study_go_server/internal/model/dto"
	"github.com/studyhive/study_go_server/internal/pkg/sanitize"
	"github.com/studyhive/study_go_server/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("会话不存在")
	ErrNotParticipant       = errors.New("无权访问此会话")
	ErrRecipientNotFound    = errors.New("收件人不存在")
	ErrSelfMessage          = errors.New("不能给自己发私信")
)

// 会话列表里最后一条消息的摘要长度（rune）
const conversationPreviewRunes = 80

// 私信正文长度上限，按清洗后的入库文本计
const maxMessageLen = 2000

type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	notifier    *Notifier
}

func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository, notifier *Notifier) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Send 发送私信。首条消息自动建会话，并刷新会话的最后一条快照。
func (s *MessageService) Send(senderID int64, req *dto.SendMessageRequest) (*dto.MessageItem, error) {
	if senderID == req.RecipientID {
		return nil, ErrSelfMessage
	}

	recipient, err := s.userRepo.GetByID(req.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	if !recipient.IsActive {
		return nil, ErrRecipientNotFound
	}

	sender, err := s.userRepo.GetByID(senderID)
	if err != nil {
		return nil, err
	}

	content, err := cleanContent(req.Content, maxMessageLen)
	if err != nil {
		return nil, err
	}

	conv, err := s.messageRepo.GetOrCreateConversation(senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		Sender:         sender.Stamp(),
		RecipientID:    req.RecipientID,
		Content:        content,
	}
	preview := sanitize.Preview(content, conversationPreviewRunes)
	if err := s.messageRepo.CreateMessage(msg, preview); err != nil {
		return nil, err
	}

	s.notifier.Notify(buildNotification(
		req.RecipientID, model.NotifyMessage, sender.Stamp(),
		model.RefMessage, msg.ID, nil, content,
	))

	return s.buildMessageItem(msg), nil
}

// ListConversations 会话列表，附带每个会话的未读数
func (s *MessageService) ListConversations(userID int64, page, pageSize int) ([]*dto.ConversationItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	convs, total, err := s.messageRepo.ListConversations(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	convIDs := make([]int64, len(convs))
	for i, c := range convs {
		convIDs[i] = c.ID
	}
	unread, err := s.messageRepo.UnreadCounts(userID, convIDs)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ConversationItem, len(convs))
	for i, c := range convs {
		item := &dto.ConversationItem{
			ID:          c.ID,
			PeerID:      c.PeerID(userID),
			LastPreview: c.LastPreview,
			UnreadCount: unread[c.ID],
		}
		if c.LastSender.UserID > 0 {
			item.LastSender = buildAuthorInfo(c.LastSender)
		}
		if c.LastSentAt != nil {
			item.LastSentAt = c.LastSentAt.Format(time.RFC3339)
		}
		items[i] = item
	}

	return items, total, nil
}

// ListMessages 会话内消息分页，最新在前；仅会话参与者可见
func (s *MessageService) ListMessages(userID, conversationID int64, page, pageSize int) ([]*dto.MessageItem, int64, error) {
	conv, err := s.messageRepo.GetConversation(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrConversationNotFound
		}
		return nil, 0, err
	}
	if !conv.HasParticipant(userID) {
		return nil, 0, ErrNotParticipant
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	msgs, total, err := s.messageRepo.ListMessages(conversationID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.MessageItem, len(msgs))
	for i, m := range msgs {
		items[i] = s.buildMessageItem(m)
	}
	return items, total, nil
}

// MarkRead 把会话内发给该用户的消息全部置为已读
func (s *MessageService) MarkRead(userID, conversationID int64) (int64, error) {
	conv, err := s.messageRepo.GetConversation(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrConversationNotFound
		}
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, ErrNotParticipant
	}

	return s.messageRepo.MarkConversationRead(conversationID, userID)
}

// UnreadCount 未读私信总数
func (s *MessageService) UnreadCount(userID int64) (int64, error) {
	return s.messageRepo.UnreadCount(userID)
}

func (s *MessageService) buildMessageItem(m *model.Message) *dto.MessageItem {
	return &dto.MessageItem{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         buildAuthorInfo(m.Sender),
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}
