package emailsvc

import (
	"sync"

	"github.com/shulehub/shule/core"
)

// DummyService records rendered messages without sending them. Tests only.
// Messages are recorded synchronously so tests need no waiting.
type DummyService struct {
	mutex        sync.Mutex
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{SentMessages: make([]core.EmailMessage, 0)}
}

func (svc *DummyService) SendMessages(messages ...*core.EmailMessage) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			continue
		}
		if msg.HasRecipients() && msg.HasContent() {
			svc.SentMessages = append(svc.SentMessages, *msg)
		}
	}
}
