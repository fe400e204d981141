package service

import (
	"strings"

	"github.com/sixpine/internal/models"
	"github.com/sixpine/internal/repository"

	"gorm.io/gorm"
)

// AddressInput 地址输入
type AddressInput struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

// AddressService 收货地址服务；同一用户至多一条默认地址
type AddressService struct {
	db          *gorm.DB
	addressRepo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(db *gorm.DB, addressRepo repository.AddressRepository) *AddressService {
	return &AddressService{db: db, addressRepo: addressRepo}
}

// List 地址列表
func (s *AddressService) List(userID uint) ([]models.Address, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.addressRepo.ListByUser(userID)
}

// Create 新建地址；首个地址自动设为默认
func (s *AddressService) Create(userID uint, input AddressInput) (*models.Address, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	address := &models.Address{UserID: userID}
	if err := applyAddressInput(address, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		count, err := repo.CountByUser(userID)
		if err != nil {
			return err
		}
		address.IsDefault = input.IsDefault || count == 0
		if err := repo.Create(address); err != nil {
			return err
		}
		if address.IsDefault {
			return repo.UnsetDefault(userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// Update 更新地址
func (s *AddressService) Update(userID, addressID uint, input AddressInput) (*models.Address, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	var updated *models.Address
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		address, err := repo.GetByIDAndUser(addressID, userID)
		if err != nil {
			return err
		}
		if address == nil {
			return ErrAddressNotFound
		}
		wasDefault := address.IsDefault
		if err := applyAddressInput(address, input); err != nil {
			return err
		}
		address.IsDefault = input.IsDefault || wasDefault
		if err := repo.Update(address); err != nil {
			return err
		}
		if address.IsDefault {
			if err := repo.UnsetDefault(userID, address.ID); err != nil {
				return err
			}
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetDefault 设为默认地址，原默认地址在同一事务内取消
func (s *AddressService) SetDefault(userID, addressID uint) (*models.Address, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	var target *models.Address
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.addressRepo.WithTx(tx)
		address, err := repo.GetByIDAndUser(addressID, userID)
		if err != nil {
			return err
		}
		if address == nil {
			return ErrAddressNotFound
		}
		if err := repo.UnsetDefault(userID, address.ID); err != nil {
			return err
		}
		address.IsDefault = true
		if err := repo.Update(address); err != nil {
			return err
		}
		target = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// Delete 删除地址（幂等）
func (s *AddressService) Delete(userID, addressID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return err
	}
	if address == nil {
		return nil
	}
	return s.addressRepo.Delete(address.ID)
}

// resolveShippingAddress 解析下单地址：指定 ID 优先，其次默认地址，再次最近一条；均无时返回 ErrNoShippingAddress
func resolveShippingAddress(repo repository.AddressRepository, userID, addressID uint) (*models.Address, error) {
	if addressID != 0 {
		address, err := repo.GetByIDAndUser(addressID, userID)
		if err != nil {
			return nil, err
		}
		if address == nil {
			return nil, ErrAddressNotFound
		}
		return address, nil
	}
	address, err := repo.GetDefault(userID)
	if err != nil {
		return nil, err
	}
	if address != nil {
		return address, nil
	}
	addresses, err := repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, ErrNoShippingAddress
	}
	latest := addresses[0]
	for _, candidate := range addresses[1:] {
		if candidate.ID > latest.ID {
			latest = candidate
		}
	}
	return &latest, nil
}

func applyAddressInput(address *models.Address, input AddressInput) error {
	address.FullName = strings.TrimSpace(input.FullName)
	address.Phone = strings.TrimSpace(input.Phone)
	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = strings.TrimSpace(input.Line2)
	address.City = strings.TrimSpace(input.City)
	address.State = strings.TrimSpace(input.State)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Country = strings.ToUpper(strings.TrimSpace(input.Country))
	if address.FullName == "" || address.Phone == "" || address.Line1 == "" ||
		address.City == "" || address.PostalCode == "" || address.Country == "" {
		return ErrInvalidAddress
	}
	return nil
}
