package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/classkeeper/internal/client/capture"
	"github.com/dmitrijs2005/classkeeper/internal/client/config"
	"github.com/dmitrijs2005/classkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/records"
	"github.com/dmitrijs2005/classkeeper/internal/client/repositories/queue"
	"github.com/dmitrijs2005/classkeeper/internal/client/services"
	"github.com/dmitrijs2005/classkeeper/internal/client/syncer"
	"github.com/dmitrijs2005/classkeeper/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the capture pipeline together: local queue, connectivity
// watcher, drainer and the remote stores, plus the REPL on top.
type App struct {
	config  *config.Config
	logger  logging.Logger
	session *identity.Session

	monitor  *connectivity.Monitor
	watcher  *connectivity.Watcher
	drainer  *syncer.Drainer
	reporter *syncer.StatusReporter
	recorder *capture.Recorder
	evidence *services.EvidenceService
	students *services.StudentService

	queueDB   *sql.DB
	recordsDB *sql.DB

	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	queueDB, err := queue.InitDatabase(ctx, c.QueueDSN)
	if err != nil {
		return nil, fmt.Errorf("initializing queue database: %w", err)
	}

	recordsDB, err := records.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		queueDB.Close()
		return nil, fmt.Errorf("initializing records database: %w", err)
	}

	objects, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
	if err != nil {
		queueDB.Close()
		recordsDB.Close()
		return nil, fmt.Errorf("initializing object store: %w", err)
	}

	q := queue.NewSQLiteRepository(queueDB)
	evidenceRepo := records.NewPostgresEvidenceRepository(recordsDB)
	studentRepo := records.NewPostgresStudentRepository(recordsDB)
	session := identity.NewSession()

	monitor := connectivity.NewMonitor(false)
	watcher := connectivity.NewWatcher(monitor, connectivity.DialProbe(c.ProbeAddr), c.OnlineCheckInterval, logger)
	drainer := syncer.NewDrainer(q, objects, evidenceRepo, session, logger)

	return &App{
		config:    c,
		logger:    logger.With("module", "cli"),
		session:   session,
		monitor:   monitor,
		watcher:   watcher,
		drainer:   drainer,
		reporter:  syncer.NewStatusReporter(q, drainer),
		recorder:  capture.NewRecorder(q, objects, evidenceRepo, monitor, session, logger, c.MaxUploadBytes, c.JPEGQuality),
		evidence:  services.NewEvidenceService(evidenceRepo, objects, session, logger),
		students:  services.NewStudentService(studentRepo, session),
		queueDB:   queueDB,
		recordsDB: recordsDB,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the background connectivity watcher and the drain trigger,
// then blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	events, unsubscribe := a.monitor.Subscribe()
	defer unsubscribe()

	go a.watcher.Run(ctx)
	go a.drainer.Run(ctx, events)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// Close releases the database handles.
func (a *App) Close() {
	if a.queueDB != nil {
		_ = a.queueDB.Close()
	}
	if a.recordsDB != nil {
		_ = a.recordsDB.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

// status builds the REPL prompt suffix: signed-in email, connectivity and
// the pending queue depth.
func (a *App) status() string {
	s := ""
	if u := a.session.Current(); u != nil {
		s = u.Email + " "
	}
	if a.monitor.IsOnline() {
		s += "online"
	} else {
		s += "offline"
	}
	if st, err := a.reporter.Status(context.Background()); err == nil && st.PendingCount > 0 {
		s += fmt.Sprintf(" %d pending", st.PendingCount)
	}
	return "(" + s + ")"
}
