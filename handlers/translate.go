package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdf-translator-web/middleware"
	"pdf-translator-web/models"
	"pdf-translator-web/translator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskManager 管理所有用户的任务
type TaskManager struct {
	// sessionID -> taskID -> task
	userTasks map[string]map[string]*models.TranslateTask
	mu        sync.RWMutex
}

var (
	taskManager *TaskManager
	appConfig   *translator.Config
	fontSet     *translator.FontResolver
)

func init() {
	taskManager = &TaskManager{
		userTasks: make(map[string]map[string]*models.TranslateTask),
	}
}

// Init 注入服务配置与字体解析器，必须在注册路由前调用
func Init(cfg *translator.Config, fonts *translator.FontResolver) {
	appConfig = cfg
	fontSet = fonts
}

// AddTask 为用户添加任务
func (tm *TaskManager) AddTask(sessionID string, task *models.TranslateTask) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.userTasks[sessionID] == nil {
		tm.userTasks[sessionID] = make(map[string]*models.TranslateTask)
	}
	tm.userTasks[sessionID][task.ID] = task
}

// GetTask 获取用户的特定任务
func (tm *TaskManager) GetTask(sessionID, taskID string) (*models.TranslateTask, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if userTasks, exists := tm.userTasks[sessionID]; exists {
		task, found := userTasks[taskID]
		return task, found
	}
	return nil, false
}

// GetUserTasks 获取用户的所有任务
func (tm *TaskManager) GetUserTasks(sessionID string) []*models.TranslateTask {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	userTasks, exists := tm.userTasks[sessionID]
	if !exists {
		return []*models.TranslateTask{}
	}

	tasks := make([]*models.TranslateTask, 0, len(userTasks))
	for _, task := range userTasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// UpdateTask 更新任务（用于更新进度等）
func (tm *TaskManager) UpdateTask(sessionID, taskID string, updateFn func(*models.TranslateTask)) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if userTasks, exists := tm.userTasks[sessionID]; exists {
		if task, found := userTasks[taskID]; found {
			updateFn(task)
		}
	}
}

// TranslateHandler 处理翻译请求
func TranslateHandler(c *gin.Context) {
	// 获取会话 ID
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	// 解析表单
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	// 检查文件类型
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只支持 .pdf 文件"})
		return
	}

	var req models.TranslateRequest
	req.TargetLanguage = strings.ToLower(strings.TrimSpace(c.PostForm("targetLanguage")))
	req.Provider = c.PostForm("provider")
	req.AzureKey = c.PostForm("azureKey")
	req.AzureEndpoint = c.PostForm("azureEndpoint")
	req.AzureRegion = c.PostForm("azureRegion")
	req.LibreURL = c.PostForm("libreUrl")
	req.LibreAPIKey = c.PostForm("libreApiKey")
	req.ForceRetranslate = c.PostForm("forceRetranslate") == "true"

	if req.TargetLanguage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "目标语言不能为空"})
		return
	}
	if !fontSet.Supported(req.TargetLanguage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不支持的目标语言: " + req.TargetLanguage})
		return
	}

	// 创建任务
	taskID := uuid.New().String()
	task := &models.TranslateTask{
		ID:             taskID,
		SessionID:      sessionID,
		SourceFile:     file.Filename,
		TargetLanguage: req.TargetLanguage,
		Status:         "pending",
		Progress:       0,
		CreatedAt:      time.Now(),
	}

	taskManager.AddTask(sessionID, task)

	// 为用户创建独立的目录
	userDir := filepath.Join("data", "users", sessionID)
	uploadDir := filepath.Join(userDir, "uploads")
	os.MkdirAll(uploadDir, 0755)

	sourcePath := filepath.Join(uploadDir, taskID+ext)
	if err := c.SaveUploadedFile(file, sourcePath); err != nil {
		taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
			t.Status = "failed"
			t.Error = "保存文件失败: " + err.Error()
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败: " + err.Error()})
		return
	}

	// 启动后台翻译任务
	go processTranslation(sessionID, taskID, sourcePath, file.Filename, req)

	c.JSON(http.StatusOK, gin.H{
		"taskId":  taskID,
		"message": "翻译任务已创建",
	})
}

// buildProvider 按请求覆盖或服务端配置选择翻译服务
func buildProvider(req models.TranslateRequest) translator.Provider {
	switch translator.ProviderType(req.Provider) {
	case translator.ProviderAzure:
		if req.AzureKey != "" {
			endpoint := req.AzureEndpoint
			if endpoint == "" {
				endpoint = translator.DefaultAzureEndpoint
			}
			region := req.AzureRegion
			if region == "" {
				region = appConfig.AzureRegion
			}
			return translator.NewAzureProvider(translator.AzureConfig{
				Key:      req.AzureKey,
				Endpoint: endpoint,
				Region:   region,
				Timeout:  appConfig.AzureTimeout,
			})
		}
	case translator.ProviderLibreTranslate:
		if req.LibreURL != "" {
			return translator.NewLibreTranslateProvider(req.LibreURL, req.LibreAPIKey)
		}
	case translator.ProviderStatic:
		return translator.NewStaticProvider(nil)
	}
	return appConfig.BuildProvider()
}

// processTranslation 处理翻译任务
func processTranslation(sessionID, taskID, sourcePath, sourceName string, req models.TranslateRequest) {
	taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
		t.Status = "processing"
	})

	logger, err := translator.NewSessionLogger(appConfig.LogDir, sessionID[:8], false)
	if err != nil {
		logger = nil
	}
	defer logger.Close()

	logger.Info("开始处理翻译任务", map[string]interface{}{
		"task":     taskID,
		"file":     sourceName,
		"language": req.TargetLanguage,
	})

	defer func() {
		if r := recover(); r != nil {
			taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
				t.Status = "failed"
				t.Error = fmt.Sprintf("翻译过程出错: %v", r)
			})
			logger.Error("翻译失败（panic）", nil, map[string]interface{}{
				"task":  taskID,
				"panic": fmt.Sprintf("%v", r),
			})
		}
	}()

	fontFile, err := fontSet.FontFile(req.TargetLanguage)
	if err != nil {
		failTask(sessionID, taskID, "字体解析失败: "+err.Error())
		return
	}

	// 每个用户独立的缓存目录
	userCacheDir := filepath.Join("data", "users", sessionID, "cache")
	cache, err := translator.NewCache(userCacheDir)
	if err != nil {
		logger.Warn("缓存初始化失败，翻译不走缓存", map[string]interface{}{"error": err.Error()})
	}
	if cache != nil && req.ForceRetranslate {
		// 强制重新翻译：忽略现有缓存，但仍写入新结果
		cache.DisableCache()
	}

	provider := buildProvider(req)
	if cache != nil {
		provider = translator.NewCachingProvider(provider, cache)
	}
	safe := translator.NewSafeTranslator(provider, logger)

	userOutputDir := filepath.Join("data", "users", sessionID, "outputs")
	os.MkdirAll(userOutputDir, 0755)
	outputName := translator.OutputFileName(sourceName, req.TargetLanguage)
	outputPath := filepath.Join(userOutputDir, taskID+"_"+outputName)

	docTranslator := translator.NewDocumentTranslator(safe, logger)
	report, err := docTranslator.Translate(sourcePath, outputPath, translator.Options{
		TargetLanguage:   req.TargetLanguage,
		FontFile:         fontFile,
		MinFontSize:      appConfig.MinFontSize,
		TranslateWorkers: appConfig.TranslateWorkers,
		Progress: func(page, total int) {
			taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
				t.Progress = float64(page) / float64(total)
			})
		},
	})
	if err != nil {
		failTask(sessionID, taskID, "翻译失败: "+err.Error())
		logger.Error("翻译失败", err, map[string]interface{}{"task": taskID})
		return
	}

	taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
		t.Status = "completed"
		t.Progress = 1.0
		t.CompletedAt = time.Now()
		t.OutputPath = report.OutputPath
		t.OutputName = outputName
		t.Pages = report.Pages
		t.Groups = report.Groups
		t.Degraded = report.Degraded
		t.Failed = report.Failed
		t.Regenerated = report.Regenerated
		t.Warnings = report.Warnings
	})

	logger.Info("翻译任务完成", map[string]interface{}{
		"task":   taskID,
		"output": report.OutputPath,
	})
}

func failTask(sessionID, taskID, msg string) {
	taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
		t.Status = "failed"
		t.Error = msg
	})
}

// GetStatusHandler 获取任务状态
func GetStatusHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	taskID := c.Param("taskId")

	task, exists := taskManager.GetTask(sessionID, taskID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或无权访问"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// DownloadHandler 下载翻译后的文件
func DownloadHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	taskID := c.Param("taskId")

	task, exists := taskManager.GetTask(sessionID, taskID)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或无权访问"})
		return
	}

	if task.Status != "completed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "任务未完成"})
		return
	}

	c.FileAttachment(task.OutputPath, task.OutputName)
}

// GetTasksHandler 获取当前用户的所有任务
func GetTasksHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	taskList := taskManager.GetUserTasks(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"tasks": taskList,
		"total": len(taskList),
	})
}

// GetLanguagesHandler 列出支持的目标语言
func GetLanguagesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": fontSet.SupportedLanguages(),
	})
}
