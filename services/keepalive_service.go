package services

import (
	"net/http"
	"time"

	"github.com/SegundamanoDev/Aurelius-backend/config"
	"github.com/SegundamanoDev/Aurelius-backend/utils"
	"github.com/robfig/cron/v3"
)

// KeepAliveService периодически пингует собственный URL, чтобы хостинг
// не усыплял процесс между запросами
type KeepAliveService struct {
	cron   *cron.Cron
	spec   string
	url    string
	client *http.Client
}

// NewKeepAliveService создает новый экземпляр KeepAliveService
func NewKeepAliveService(cfg *config.Config) *KeepAliveService {
	return &KeepAliveService{
		cron: cron.New(),
		spec: cfg.KeepAlive.Spec,
		url:  cfg.KeepAlive.TargetURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Start запускает планировщик пингов
func (s *KeepAliveService) Start() error {
	if s.url == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.ping); err != nil {
		return err
	}
	s.cron.Start()
	utils.LogInfo("keep-alive scheduler started: %s -> %s", s.spec, s.url)
	return nil
}

// Stop останавливает планировщик
func (s *KeepAliveService) Stop() {
	s.cron.Stop()
}

// ping выполняет один запрос к целевому URL
func (s *KeepAliveService) ping() {
	resp, err := s.client.Get(s.url)
	if err != nil {
		utils.LogError("keep-alive ping failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		utils.LogDebug("keep-alive ping ok")
	} else {
		utils.LogError("keep-alive ping returned status %d", resp.StatusCode)
	}
}
