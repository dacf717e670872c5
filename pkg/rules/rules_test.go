package rules_test

import (
	"math"
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/rules"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allConditions = []domain.ConditionOperator{
	domain.OpEqual, domain.OpNotEqual, domain.OpGreater,
	domain.OpGreaterOrEqual, domain.OpLess, domain.OpLessOrEqual,
}

var allModifications = []domain.ModificationOperator{
	domain.OpSet, domain.OpIncrease, domain.OpDecrease, domain.OpToggle,
}

func TestEvaluate_Numeric(t *testing.T) {
	tenth, fifth := 0.1, 0.2

	tests := []struct {
		current domain.Value
		op      domain.ConditionOperator
		literal domain.Value
		want    bool
	}{
		{domain.IntValue(5), domain.OpEqual, domain.IntValue(5), true},
		{domain.IntValue(5), domain.OpNotEqual, domain.IntValue(5), false},
		{domain.IntValue(5), domain.OpGreater, domain.IntValue(4), true},
		{domain.IntValue(5), domain.OpGreaterOrEqual, domain.IntValue(6), false},
		{domain.IntValue(-1), domain.OpLess, domain.IntValue(0), true},
		{domain.IntValue(0), domain.OpLessOrEqual, domain.IntValue(0), true},
		{domain.FloatValue(tenth + fifth), domain.OpEqual, domain.FloatValue(0.3), false},
		{domain.FloatValue(1.5), domain.OpGreater, domain.FloatValue(1.25), true},
	}

	for _, tt := range tests {
		got, err := rules.Evaluate(tt.current, tt.op, tt.literal)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v %s %v", tt.current, tt.op, tt.literal)
	}
}

func TestEvaluate_Equality(t *testing.T) {
	ok, err := rules.Evaluate(domain.StringValue("a"), domain.OpNotEqual, domain.StringValue("b"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rules.Evaluate(domain.BoolValue(true), domain.OpEqual, domain.BoolValue(false))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate_UnsupportedOperators(t *testing.T) {
	samples := []domain.Value{domain.BoolValue(true), domain.StringValue("x")}
	for _, v := range samples {
		for _, op := range allConditions {
			if !op.IsOrdering() {
				continue
			}
			got, err := rules.Evaluate(v, op, v)
			assert.ErrorIs(t, err, domain.ErrUnsupportedOperator, "%s %s", v.Type(), op)
			assert.False(t, got)
		}
	}
}

func TestEvaluate_TypeMismatch(t *testing.T) {
	_, err := rules.Evaluate(domain.IntValue(1), domain.OpEqual, domain.FloatValue(1))
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestCompute_SupportTable(t *testing.T) {
	samples := map[domain.VariableType]domain.Value{
		domain.TypeBool:   domain.BoolValue(false),
		domain.TypeInt:    domain.IntValue(1),
		domain.TypeFloat:  domain.FloatValue(1),
		domain.TypeString: domain.StringValue("s"),
	}

	for typ, v := range samples {
		for _, op := range allModifications {
			_, err := rules.Compute(v, op, v)
			if rules.SupportsModification(typ, op) {
				assert.NoError(t, err, "%s %s", typ, op)
			} else {
				assert.ErrorIs(t, err, domain.ErrUnsupportedOperator, "%s %s", typ, op)
			}
		}
	}

	assert.False(t, rules.SupportsModification(domain.TypeBool, domain.OpIncrease))
	assert.False(t, rules.SupportsModification(domain.TypeInt, domain.OpToggle))
	assert.False(t, rules.SupportsModification(domain.TypeString, domain.OpDecrease))
}

func TestCompute_Arithmetic(t *testing.T) {
	got, err := rules.Compute(domain.FloatValue(1.5), domain.OpDecrease, domain.FloatValue(0.5))
	require.NoError(t, err)
	assert.True(t, got.Equal(domain.FloatValue(1)))

	got, err = rules.Compute(domain.StringValue("old"), domain.OpSet, domain.StringValue("new"))
	require.NoError(t, err)
	assert.True(t, got.Equal(domain.StringValue("new")))

	_, err = rules.Compute(domain.IntValue(1), domain.OpIncrease, domain.FloatValue(1))
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestCompute_IntOverflow(t *testing.T) {
	tests := []struct {
		current, operand int64
		op               domain.ModificationOperator
	}{
		{math.MaxInt64, 1, domain.OpIncrease},
		{math.MinInt64, 1, domain.OpDecrease},
		{0, math.MinInt64, domain.OpDecrease},
		{-1, math.MinInt64, domain.OpIncrease},
	}
	for _, tt := range tests {
		_, err := rules.Compute(domain.IntValue(tt.current), tt.op, domain.IntValue(tt.operand))
		assert.ErrorIs(t, err, domain.ErrIntOverflow, "%d %s %d", tt.current, tt.op, tt.operand)
	}

	got, err := rules.Compute(domain.IntValue(-1), domain.OpDecrease, domain.IntValue(math.MinInt64))
	require.NoError(t, err)
	assert.True(t, got.Equal(domain.IntValue(math.MaxInt64)))

	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(math.MaxInt64), ""))
	_, err = rules.Apply(store, "Gold", domain.OpIncrease, domain.IntValue(1))
	assert.ErrorIs(t, err, domain.ErrIntOverflow)
	gold, _ := store.Get("Gold")
	assert.True(t, gold.Equal(domain.IntValue(math.MaxInt64)), "store untouched")
}

func TestScenario_Gold(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("Gold", domain.TypeInt, domain.IntValue(0), ""))

	next, err := rules.Apply(store, "Gold", domain.OpIncrease, domain.IntValue(50))
	require.NoError(t, err)
	assert.True(t, next.Equal(domain.IntValue(50)))

	stored, _ := store.Get("Gold")
	assert.True(t, stored.Equal(domain.IntValue(50)))

	ok, err := rules.Check(store, "Gold", domain.OpGreaterOrEqual, domain.IntValue(50))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rules.Check(store, "Gold", domain.OpGreaterOrEqual, domain.IntValue(51))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScenario_HasKeyToggle(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("HasKey", domain.TypeBool, domain.BoolValue(false), ""))

	next, err := rules.Apply(store, "HasKey", domain.OpToggle, domain.Value{})
	require.NoError(t, err)
	assert.True(t, next.Equal(domain.BoolValue(true)))

	next, err = rules.Apply(store, "HasKey", domain.OpToggle, domain.Value{})
	require.NoError(t, err)
	assert.True(t, next.Equal(domain.BoolValue(false)))
}

func TestApply_FailureLeavesStoreUntouched(t *testing.T) {
	store := variables.NewStore()
	require.NoError(t, store.Register("Name", domain.TypeString, domain.StringValue("Ann"), ""))

	_, err := rules.Apply(store, "Name", domain.OpIncrease, domain.StringValue("x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperator)

	v, _ := store.Get("Name")
	assert.True(t, v.Equal(domain.StringValue("Ann")))

	_, err = rules.Apply(store, "Missing", domain.OpSet, domain.IntValue(1))
	assert.ErrorIs(t, err, domain.ErrUnknownVariable)
}
