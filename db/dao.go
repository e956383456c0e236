package db

import (
	"errors"

	"gorm.io/gorm"
)

var ErrDuplicateEntry = errors.New("duplicate entry")

type ModelDao interface {
	GetModel(owner, id string) (*SavedModel, error)
	ListModels(owner string) ([]*SavedModel, error)
	NextVersion(owner, name string) (int64, error)
	CreateModel(model *SavedModel) error
	DeleteModel(owner, id string) error
	SetDeployed(owner, id string, deployed bool) error
}

type ModelSvcDB struct {
	db *gorm.DB
}

func NewModelSvcDB(db *gorm.DB) ModelDao {
	return &ModelSvcDB{
		db,
	}
}

func (d *ModelSvcDB) GetModel(owner, id string) (*SavedModel, error) {
	model := SavedModel{}
	err := d.db.Model(SavedModel{}).Where("id = ? and owner = ?", id, owner).Take(&model).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (d *ModelSvcDB) ListModels(owner string) ([]*SavedModel, error) {
	models := make([]*SavedModel, 0)
	if err := d.db.Where("owner = ?", owner).Order("updated_at desc").Find(&models).Error; err != nil {
		return models, err
	}
	return models, nil
}

// NextVersion computes 1 + max(version) over the rows for (owner, name), or 1
// if none exist. Read-then-write with no lock, two concurrent saves of the
// same name may observe the same prior max.
func (d *ModelSvcDB) NextVersion(owner, name string) (int64, error) {
	model := SavedModel{}
	err := d.db.Model(SavedModel{}).Where("owner = ? and name = ?", owner, name).Order("version desc").Take(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 1, nil
		}
		return 0, err
	}
	return model.Version + 1, nil
}

func (d *ModelSvcDB) CreateModel(model *SavedModel) error {
	return d.db.Transaction(func(dbTx *gorm.DB) error {
		err := dbTx.Create(model).Error
		if err != nil && MysqlErrCode(err) == ErrDuplicateEntryCode {
			return ErrDuplicateEntry
		}
		return err
	})
}

func (d *ModelSvcDB) DeleteModel(owner, id string) error {
	return d.db.Transaction(func(dbTx *gorm.DB) error {
		result := dbTx.Where("id = ? and owner = ?", id, owner).Delete(&SavedModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (d *ModelSvcDB) SetDeployed(owner, id string, deployed bool) error {
	return d.db.Transaction(func(dbTx *gorm.DB) error {
		result := dbTx.Model(SavedModel{}).Where("id = ? and owner = ?", id, owner).Update("is_deployed", deployed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func InitTables(db *gorm.DB) {
	if err := db.AutoMigrate(&SavedModel{}); err != nil {
		panic(err)
	}
}
