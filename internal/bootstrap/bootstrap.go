package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coursecompass/internal/config"
	"coursecompass/internal/core/ports"
	"coursecompass/internal/core/usecase"
	"coursecompass/internal/infrastructure/chunking"
	"coursecompass/internal/infrastructure/extractor"
	"coursecompass/internal/infrastructure/lexical"
	"coursecompass/internal/infrastructure/llm/ollama"
	"coursecompass/internal/infrastructure/queue/nats"
	"coursecompass/internal/infrastructure/repository/postgres"
	"coursecompass/internal/infrastructure/resilience"
	"coursecompass/internal/infrastructure/storage/localfs"
	chromemstore "coursecompass/internal/infrastructure/vector/chromem"
	"coursecompass/internal/infrastructure/vector/qdrant"
)

// App wires the full object graph. Handlers receive their collaborators from
// here; nothing reaches for ambient globals.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    ports.MessageQueue
	Repo     ports.DocumentRepository
	Snapshot *usecase.SnapshotHolder

	IndexUC    ports.IndexBuilder
	RetrieveUC ports.PassageRetriever
	AnswerUC   ports.QuestionAnswerer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewCorpusRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSReindexSubject, cfg.NATSPublishSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	extractors := extractor.NewRegistry()
	source, err := localfs.New(cfg.CourseFilesPath, extractors.Supports)
	if err != nil {
		return nil, fmt.Errorf("init course file source: %w", err)
	}

	chunker, err := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("init chunker: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectors, err := buildVectorStore(cfg)
	if err != nil {
		return nil, err
	}

	facts, err := config.LoadCourseFacts(cfg.CourseFactsPath)
	if err != nil {
		return nil, fmt.Errorf("load course facts: %w", err)
	}

	holder := usecase.NewSnapshotHolder()
	newLexical := func() ports.LexicalIndex { return lexical.New() }

	ingestUC := usecase.NewIngestUseCase(source, extractors, repo, cfg.CanvasBaseURL, logger)
	indexUC := usecase.NewIndexUseCase(ingestUC, repo, chunker, embedder, vectors, newLexical, holder, queue, logger)
	queryEmbedder := &deadlineEmbedder{
		inner:   embedder,
		timeout: time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
	}
	retrieveUC := usecase.NewRetrieveUseCase(holder, queryEmbedder, vectors, cfg.FusionAlpha, cfg.CandidateLimit(), cfg.RetrievalTopN, logger)
	answerUC := usecase.NewAnswerUseCase(retrieveUC, generator, usecase.NewIntentRegistry(facts), usecase.AnswerConfig{
		TopN:              cfg.RetrievalTopN,
		MaxSources:        cfg.MaxSources,
		MaxContextChars:   cfg.MaxContextChars,
		LowConfidence:     cfg.LowConfidence,
		GenerationTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
	}, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Queue:    queue,
		Repo:     repo,
		Snapshot: holder,

		IndexUC:    indexUC,
		RetrieveUC: retrieveUC,
		AnswerUC:   answerUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func buildVectorStore(cfg config.Config) (ports.VectorStore, error) {
	switch cfg.VectorBackend {
	case "qdrant":
		return qdrant.New(cfg.QdrantURL, cfg.VectorCollection), nil
	case "chromem":
		store, err := chromemstore.New(cfg.ChromemPath, cfg.VectorCollection)
		if err != nil {
			return nil, fmt.Errorf("init chromem store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// deadlineEmbedder caps per-query embedding latency. Index builds use the
// undecorated embedder; batch jobs tolerate slow batches, queries do not.
type deadlineEmbedder struct {
	inner   ports.Embedder
	timeout time.Duration
}

func (d *deadlineEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.inner.Embed(ctx, texts)
}

func (d *deadlineEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.inner.EmbedQuery(ctx, text)
}
