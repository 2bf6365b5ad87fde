package tests

import (
	"context"
	"log"
	"sync"
	"testing"

	"github.com/tastegent/tastegent/internal/domain"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database
// connection along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, *mongo.Client, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:latest")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), mongoClient, func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// MemFileRepository implements domain.FileRepository in memory, standing in
// for the S3-backed store.
type MemFileRepository struct {
	mu    sync.Mutex
	files map[string]memFile
}

type memFile struct {
	data        []byte
	contentType string
}

func NewMemFileRepository() *MemFileRepository {
	return &MemFileRepository{files: make(map[string]memFile)}
}

func (m *MemFileRepository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filename] = memFile{data: file, contentType: contentType}
	return "/uploads/" + filename, nil
}

func (m *MemFileRepository) Download(ctx context.Context, filename string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filename]
	if !ok {
		return nil, "", domain.ErrFileNotFound
	}
	return f.data, f.contentType, nil
}

// Count returns how many files are stored
func (m *MemFileRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// FakeChatService returns a canned reply without calling any provider
type FakeChatService struct {
	CannedReply string
}

func (f *FakeChatService) Reply(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	reply := f.CannedReply
	if reply == "" {
		reply = "Try the carbonara."
	}
	return &domain.ChatResponse{Reply: reply}, nil
}
