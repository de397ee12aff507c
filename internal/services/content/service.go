package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"gatekey/internal/conditions"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
)

// Document tags and schemas.
const (
	TagApp          = "gatekey"
	TagConversation = "conversation"
	TagMessage      = "message"
	TagPost         = "post"

	SchemaConversation = "gatekey/conversation/v1"
	SchemaMessage      = "gatekey/message/v1"
	SchemaPost         = "gatekey/post/v1"
)

// Service is the social content layer on top of a session.
type Service struct {
	sessions  domain.SessionService
	encryptor domain.EncryptionService
	docs      domain.DocumentStore
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for content events. The default discards.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// New returns a content service.
func New(
	sessions domain.SessionService,
	encryptor domain.EncryptionService,
	docs domain.DocumentStore,
	opts ...Option,
) (*Service, error) {
	if sessions == nil || encryptor == nil || docs == nil {
		return nil, failure.New(failure.InvalidInput, "content.New", "sessions, encryptor and document store are required")
	}
	s := &Service{sessions: sessions, encryptor: encryptor, docs: docs, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateConversation stores a conversation with recipients and the sender.
//
// Steps:
//  1. Require an active session and at least one recipient.
//  2. Add the sender so they can read their own messages.
//  3. Encrypt the name, when given, for every participant.
//  4. Store the conversation document.
func (s *Service) CreateConversation(ctx context.Context, recipients []domain.DID, name string) (string, error) {
	const op = "content.CreateConversation"

	me, err := s.sessions.Principal(ctx)
	if err != nil {
		return "", err
	}
	if len(recipients) == 0 {
		return "", failure.New(failure.InvalidInput, op, "a conversation needs at least one recipient")
	}
	participants := conditions.IncludeSender(recipients, me.DID)
	conv := domain.Conversation{Recipients: participants}

	if name != "" {
		payload, err := s.encryptor.Encrypt(ctx, []byte(name), conditions.ForRecipients(participants))
		if err != nil {
			return "", err
		}
		conv.EncryptedName = &payload
	}

	id, err := s.docs.Create(ctx, conv, me.DID, []string{TagApp, TagConversation}, SchemaConversation)
	if err != nil {
		return "", failure.Wrap(err, failure.StorageFailure, op, "could not store conversation")
	}
	s.log.Info("conversation created", slog.String("conversation", id), slog.Int("participants", len(participants)))
	return id, nil
}

// Conversation loads a conversation document.
func (s *Service) Conversation(ctx context.Context, conversationID string) (domain.Conversation, error) {
	return load[domain.Conversation](ctx, s.docs, "content.Conversation", conversationID, TagConversation)
}

// Message loads a message document.
func (s *Service) Message(ctx context.Context, messageID string) (domain.Message, error) {
	return load[domain.Message](ctx, s.docs, "content.Message", messageID, TagMessage)
}

// Post loads a post document.
func (s *Service) Post(ctx context.Context, postID string) (domain.Post, error) {
	return load[domain.Post](ctx, s.docs, "content.Post", postID, TagPost)
}

// load decodes the document with id, which must carry tag.
func load[T any](ctx context.Context, docs domain.DocumentStore, op, id, tag string) (T, error) {
	var out T
	doc, err := docs.Load(ctx, id)
	if err != nil {
		return out, err
	}
	if !slices.Contains(doc.Tags, tag) {
		return out, failure.New(failure.InvalidInput, op, "document "+id+" is not a "+tag)
	}
	if err := json.Unmarshal(doc.Content, &out); err != nil {
		return out, failure.Wrap(err, failure.InvalidInput, op, "document is not a "+tag)
	}
	return out, nil
}

// SendMessage encrypts body for the conversation's participants and stores it.
func (s *Service) SendMessage(ctx context.Context, conversationID, body string) (string, error) {
	const op = "content.SendMessage"

	me, err := s.sessions.Principal(ctx)
	if err != nil {
		return "", err
	}
	if conversationID == "" || body == "" {
		return "", failure.New(failure.InvalidInput, op, "conversation id and body are required")
	}
	conv, err := s.Conversation(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if len(conv.Recipients) == 0 {
		return "", failure.New(failure.InvalidInput, op, "conversation has no recipients")
	}

	payload, err := s.encryptor.Encrypt(ctx, []byte(body), conditions.ForRecipients(conditions.IncludeSender(conv.Recipients, me.DID)))
	if err != nil {
		return "", err
	}
	msg := domain.Message{ConversationID: conversationID, EncryptedMessage: payload}
	id, err := s.docs.Create(ctx, msg, me.DID, []string{TagApp, TagMessage}, SchemaMessage)
	if err != nil {
		return "", failure.Wrap(err, failure.StorageFailure, op, "could not store message")
	}
	s.log.Debug("message sent", slog.String("conversation", conversationID), slog.String("message", id))
	return id, nil
}

// DecryptMessage opens a message payload with the current auth proof.
func (s *Service) DecryptMessage(ctx context.Context, payload domain.EncryptedPayload) (string, error) {
	return s.decrypt(ctx, "content.DecryptMessage", payload)
}

// CreatePost stores a post. With rules, the body is encrypted under the
// token gate or custom forest they describe.
func (s *Service) CreatePost(ctx context.Context, body string, rules *domain.EncryptionRules) (string, error) {
	const op = "content.CreatePost"

	me, err := s.sessions.Principal(ctx)
	if err != nil {
		return "", err
	}
	if body == "" {
		return "", failure.New(failure.InvalidInput, op, "post body is required")
	}

	post := domain.Post{Body: body}
	if rules != nil {
		forest, err := conditions.ForRules(*rules)
		if err != nil {
			return "", err
		}
		payload, err := s.encryptor.Encrypt(ctx, []byte(body), forest)
		if err != nil {
			return "", err
		}
		post = domain.Post{EncryptedBody: &payload}
	}

	id, err := s.docs.Create(ctx, post, me.DID, []string{TagApp, TagPost}, SchemaPost)
	if err != nil {
		return "", failure.Wrap(err, failure.StorageFailure, op, "could not store post")
	}
	return id, nil
}

// ReadPost returns a post's body, decrypting it when the post is gated.
func (s *Service) ReadPost(ctx context.Context, postID string) (string, error) {
	post, err := s.Post(ctx, postID)
	if err != nil {
		return "", err
	}
	if post.EncryptedBody == nil {
		return post.Body, nil
	}
	return s.DecryptPost(ctx, *post.EncryptedBody)
}

// ReadMessage loads a message and decrypts it.
func (s *Service) ReadMessage(ctx context.Context, messageID string) (string, error) {
	msg, err := s.Message(ctx, messageID)
	if err != nil {
		return "", err
	}
	return s.DecryptMessage(ctx, msg.EncryptedMessage)
}

// DecryptPost opens a gated post body with the current auth proof.
func (s *Service) DecryptPost(ctx context.Context, payload domain.EncryptedPayload) (string, error) {
	return s.decrypt(ctx, "content.DecryptPost", payload)
}

func (s *Service) decrypt(ctx context.Context, op string, payload domain.EncryptedPayload) (string, error) {
	me, err := s.sessions.Principal(ctx)
	if err != nil {
		return "", err
	}
	family := me.Family()
	if family == domain.FamilyNone {
		return "", failure.New(failure.NotGatedForChain, op, "session account "+me.Account.Chain()+" cannot satisfy access conditions")
	}
	proof, err := s.sessions.AuthProof(ctx)
	if err != nil {
		return "", err
	}
	pt, err := s.encryptor.Decrypt(ctx, payload, &proof, family)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
