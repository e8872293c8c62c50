package repository

import (
	"github.com/ashishacharya123/pkms-todos/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByUUID finds a project by UUID
func (r *GormProjectRepository) FindByUUID(uuid string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("uuid = ?", uuid).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByUUIDs returns the projects with the given UUIDs
func (r *GormProjectRepository) FindByUUIDs(uuids []string) ([]models.Project, error) {
	var projects []models.Project
	if len(uuids) == 0 {
		return projects, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// FindByName finds a project by its unique name
func (r *GormProjectRepository) FindByName(name string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("name = ?", name).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns every project ordered by name
func (r *GormProjectRepository) List() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Order("name ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// TodoCounts returns the number of linked todos per project UUID
func (r *GormProjectRepository) TodoCounts() (map[string]int64, error) {
	var rows []struct {
		ProjectUUID string
		Count       int64
	}
	if err := r.db.Model(&models.TodoProject{}).
		Select("project_uuid, COUNT(*) AS count").
		Group("project_uuid").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ProjectUUID] = row.Count
	}
	return counts, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("TodoLinks").Save(project).Error
}

// Delete deletes a project and its todo links in a transaction
func (r *GormProjectRepository) Delete(uuid string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Unlink todos; the todos themselves stay
		if err := tx.Where("project_uuid = ?", uuid).Delete(&models.TodoProject{}).Error; err != nil {
			return err
		}

		if err := tx.Where("uuid = ?", uuid).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		return nil
	})
}
