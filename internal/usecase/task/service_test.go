package task

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/repositories"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/webhook"
)

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, ownerID, id uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[id]; ok && task.OwnerID == ownerID {
		delete(r.tasks, id)
	}
	return nil
}

func (r *fakeTaskRepo) List(_ context.Context, ownerID uuid.UUID, filters repositories.TaskFilters) ([]*entities.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Task
	for _, task := range r.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if filters.Status != nil && task.Status != *filters.Status {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTaskRepo) MaxPosition(_ context.Context, ownerID uuid.UUID, status entities.TaskStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, task := range r.tasks {
		if task.OwnerID == ownerID && task.Status == status && task.Position > max {
			max = task.Position
		}
	}
	return max, nil
}

func (r *fakeTaskRepo) Reorder(_ context.Context, ownerID uuid.UUID, status entities.TaskStatus, orderedIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range orderedIDs {
		task, ok := r.tasks[id]
		if !ok || task.OwnerID != ownerID || task.Status != status {
			return entities.ErrTaskNotInColumn
		}
	}
	for pos, id := range orderedIDs {
		r.tasks[id].Position = pos + 1
	}
	return nil
}

// publishRecorder captures emitted events; the embedded interface leaves the
// rest of the surface unimplemented.
type publishRecorder struct {
	webhook.Service
	mu     sync.Mutex
	events []string
}

func (p *publishRecorder) Publish(_ context.Context, _ uuid.UUID, eventType string, _ interface{}, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *publishRecorder) emitted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

func newTestTaskService() (Service, *fakeTaskRepo, *publishRecorder) {
	repo := newFakeTaskRepo()
	hooks := &publishRecorder{}
	return NewService(repo, hooks, zap.NewNop()), repo, hooks
}

func TestTaskService_Create(t *testing.T) {
	svc, _, hooks := newTestTaskService()
	ownerID := uuid.New()

	first, err := svc.Create(context.Background(), ownerID, Input{Title: "Enviar proposta"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != entities.TaskStatusBacklog {
		t.Fatalf("status = %s, want backlog", first.Status)
	}
	if first.Position != 1 {
		t.Fatalf("position = %d, want 1", first.Position)
	}

	second, err := svc.Create(context.Background(), ownerID, Input{Title: "Agendar retorno"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Position != 2 {
		t.Fatalf("second position = %d, want 2", second.Position)
	}

	events := hooks.emitted()
	if len(events) != 2 || events[0] != entities.EventTaskCreated {
		t.Fatalf("emitted events = %v, want two task.created", events)
	}
}

func TestTaskService_Create_EmptyTitle(t *testing.T) {
	svc, _, _ := newTestTaskService()
	if _, err := svc.Create(context.Background(), uuid.New(), Input{}); err != usecaseErrors.ErrInvalidInput {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestTaskService_Get_WrongOwner(t *testing.T) {
	svc, _, _ := newTestTaskService()
	ownerID := uuid.New()

	task, err := svc.Create(context.Background(), ownerID, Input{Title: "Revisar carteira"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), uuid.New(), task.ID); err != usecaseErrors.ErrTaskNotFound {
		t.Fatalf("cross-tenant read: got %v, want ErrTaskNotFound", err)
	}
}

func TestTaskService_Transition(t *testing.T) {
	svc, _, hooks := newTestTaskService()
	ownerID := uuid.New()

	task, err := svc.Create(context.Background(), ownerID, Input{Title: "Preparar relatorio"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := svc.Transition(context.Background(), ownerID, task.ID, entities.TaskStatusPendente)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if moved.Status != entities.TaskStatusPendente {
		t.Fatalf("status = %s, want pendente", moved.Status)
	}
	if moved.Position != 1 {
		t.Fatalf("position in new column = %d, want 1", moved.Position)
	}

	events := hooks.emitted()
	if events[len(events)-1] != entities.EventTaskStatusChanged {
		t.Fatalf("last event = %s, want task.status_changed", events[len(events)-1])
	}
}

func TestTaskService_Transition_Illegal(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	ownerID := uuid.New()

	task, err := svc.Create(context.Background(), ownerID, Input{Title: "Fechar contrato"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Transition(context.Background(), ownerID, task.ID, entities.TaskStatusConcluida); err != usecaseErrors.ErrInvalidTransition {
		t.Fatalf("backlog -> concluida: got %v, want ErrInvalidTransition", err)
	}

	stored, _ := repo.FindByID(context.Background(), ownerID, task.ID)
	if stored.Status != entities.TaskStatusBacklog {
		t.Fatalf("status changed after rejected transition: %s", stored.Status)
	}
}

func TestTaskService_Reorder(t *testing.T) {
	svc, repo, _ := newTestTaskService()
	ownerID := uuid.New()

	a, _ := svc.Create(context.Background(), ownerID, Input{Title: "A"})
	b, _ := svc.Create(context.Background(), ownerID, Input{Title: "B"})
	c, _ := svc.Create(context.Background(), ownerID, Input{Title: "C"})

	if err := svc.Reorder(context.Background(), ownerID, entities.TaskStatusBacklog, []uuid.UUID{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), ownerID, c.ID)
	if stored.Position != 1 {
		t.Fatalf("c position = %d, want 1", stored.Position)
	}
	stored, _ = repo.FindByID(context.Background(), ownerID, b.ID)
	if stored.Position != 3 {
		t.Fatalf("b position = %d, want 3", stored.Position)
	}
}

func TestTaskService_Reorder_Invalid(t *testing.T) {
	svc, _, _ := newTestTaskService()
	ownerID := uuid.New()

	if err := svc.Reorder(context.Background(), ownerID, entities.TaskStatusBacklog, nil); err != usecaseErrors.ErrInvalidKanbanOrder {
		t.Fatalf("empty order: got %v, want ErrInvalidKanbanOrder", err)
	}

	id := uuid.New()
	if err := svc.Reorder(context.Background(), ownerID, entities.TaskStatusBacklog, []uuid.UUID{id, id}); err != usecaseErrors.ErrInvalidKanbanOrder {
		t.Fatalf("duplicate ids: got %v, want ErrInvalidKanbanOrder", err)
	}

	task, err := svc.Create(context.Background(), ownerID, Input{Title: "Solta"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Reorder(context.Background(), ownerID, entities.TaskStatusPendente, []uuid.UUID{task.ID}); err != usecaseErrors.ErrInvalidKanbanOrder {
		t.Fatalf("task outside column: got %v, want ErrInvalidKanbanOrder", err)
	}
}
