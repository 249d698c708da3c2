package model

// TargetType 目标类型 — 按转化漏斗阶段排序的封闭枚举
type TargetType string

const (
	TargetTypeMobilisation       TargetType = "mobilisation"
	TargetTypeOFRRegistration    TargetType = "ofr_registration"
	TargetTypeApprovedOFR        TargetType = "approved_ofr"
	TargetTypeMigration          TargetType = "migration"
	TargetTypeEnrolment          TargetType = "enrolment"
	TargetTypeTrainingCompletion TargetType = "training_completion"
	TargetTypeAssessment         TargetType = "assessment"
	TargetTypePlacement          TargetType = "placement"
	TargetTypeRetention          TargetType = "retention"
)

// funnelOrder 漏斗阶段序号，同时充当合法性表
var funnelOrder = map[TargetType]int{
	TargetTypeMobilisation:       0,
	TargetTypeOFRRegistration:    1,
	TargetTypeApprovedOFR:        2,
	TargetTypeMigration:          3,
	TargetTypeEnrolment:          4,
	TargetTypeTrainingCompletion: 5,
	TargetTypeAssessment:         6,
	TargetTypePlacement:          7,
	TargetTypeRetention:          8,
}

// IsValid 是否为合法目标类型
func (t TargetType) IsValid() bool {
	_, ok := funnelOrder[t]
	return ok
}

// CanCarryForward 该类型未完成量是否允许结转
// migration（含）之前的阶段可结转；enrolment（含）之后只能作废记为流失
// 结转资格是类型的属性，在结算时实时判定，不随目标行快照
func (t TargetType) CanCarryForward() bool {
	order, ok := funnelOrder[t]
	if !ok {
		return false
	}
	return order <= funnelOrder[TargetTypeMigration]
}

// AllTargetTypes 按漏斗顺序返回全部目标类型
func AllTargetTypes() []TargetType {
	return []TargetType{
		TargetTypeMobilisation,
		TargetTypeOFRRegistration,
		TargetTypeApprovedOFR,
		TargetTypeMigration,
		TargetTypeEnrolment,
		TargetTypeTrainingCompletion,
		TargetTypeAssessment,
		TargetTypePlacement,
		TargetTypeRetention,
	}
}

// CarryForwardAction 结转处理动作 — 封闭枚举
type CarryForwardAction string

const (
	// ActionAddToNext 结转到下一周期（仅限可结转类型）
	ActionAddToNext CarryForwardAction = "add_to_next"
	// ActionRedistribute 按权重拆分转派给其他员工（仅限可结转类型）
	ActionRedistribute CarryForwardAction = "redistribute"
	// ActionVoid 作废，未完成量永久记为流失
	ActionVoid CarryForwardAction = "void"
)

// IsValid 是否为合法结转动作
func (a CarryForwardAction) IsValid() bool {
	switch a {
	case ActionAddToNext, ActionRedistribute, ActionVoid:
		return true
	}
	return false
}
