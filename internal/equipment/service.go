package equipment

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	DB *gorm.DB
}

// DiffIDs computes which ids to insert and which to delete so that current
// becomes desired. Order of the inputs does not matter.
func DiffIDs(current, desired []uint64) (add, remove []uint64) {
	cur := make(map[uint64]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	want := make(map[uint64]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}

	for id := range want {
		if _, ok := cur[id]; !ok {
			add = append(add, id)
		}
	}
	for id := range cur {
		if _, ok := want[id]; !ok {
			remove = append(remove, id)
		}
	}
	return add, remove
}

// SetGroups reconciles group membership for one equipment to exactly the
// given group ids, in a single transaction.
func (s *Service) SetGroups(ctx context.Context, equipmentID uint64, groupIDs []uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq Equipment
		if err := tx.First(&eq, equipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var rows []GroupMember
		if err := tx.Where("equipment_id = ?", equipmentID).Find(&rows).Error; err != nil {
			return err
		}
		current := make([]uint64, 0, len(rows))
		for _, r := range rows {
			current = append(current, r.GroupID)
		}

		add, remove := DiffIDs(current, groupIDs)

		if len(remove) > 0 {
			if err := tx.Where("equipment_id = ? AND group_id IN ?", equipmentID, remove).
				Delete(&GroupMember{}).Error; err != nil {
				return err
			}
		}
		for _, gid := range add {
			if err := tx.Create(&GroupMember{EquipmentID: equipmentID, GroupID: gid}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type PartQuantity struct {
	PartID   uint64 `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// SetParts reconciles the equipment/part links to exactly the given set.
// Existing links keep their row when only the quantity changes.
func (s *Service) SetParts(ctx context.Context, equipmentID uint64, parts []PartQuantity) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq Equipment
		if err := tx.First(&eq, equipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var rows []PartLink
		if err := tx.Where("equipment_id = ?", equipmentID).Find(&rows).Error; err != nil {
			return err
		}

		current := make(map[uint64]int, len(rows))
		for _, r := range rows {
			current[r.PartID] = r.Quantity
		}
		desired := make(map[uint64]int, len(parts))
		for _, p := range parts {
			q := p.Quantity
			if q < 1 {
				q = 1
			}
			desired[p.PartID] = q
		}

		for pid := range current {
			if _, ok := desired[pid]; !ok {
				if err := tx.Where("equipment_id = ? AND part_id = ?", equipmentID, pid).
					Delete(&PartLink{}).Error; err != nil {
					return err
				}
			}
		}
		for pid, q := range desired {
			if have, ok := current[pid]; ok {
				if have != q {
					if err := tx.Model(&PartLink{}).
						Where("equipment_id = ? AND part_id = ?", equipmentID, pid).
						Update("quantity", q).Error; err != nil {
						return err
					}
				}
				continue
			}
			if err := tx.Create(&PartLink{EquipmentID: equipmentID, PartID: pid, Quantity: q}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
