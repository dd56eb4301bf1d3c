// Package store provides an in-memory payslip.Store implementation for
// tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/opspay/payroll-engine/fiscal"
	"github.com/opspay/payroll-engine/payslip"
	"github.com/opspay/payroll-engine/tax"
)

type declKey struct {
	EmployeeID string
	FiscalYear string
}

// Memory is a mutex-guarded in-memory store.
type Memory struct {
	mu           sync.RWMutex
	policies     map[string]payslip.PolicyRecord
	employees    map[string]payslip.Employee
	declarations map[declKey]tax.ITDeclaration
	payslips     map[string]*payslip.Payslip
	byEmployee   map[string][]string // employee -> payslip IDs, insertion order
}

func NewMemory() *Memory {
	return &Memory{
		policies:     make(map[string]payslip.PolicyRecord),
		employees:    make(map[string]payslip.Employee),
		declarations: make(map[declKey]tax.ITDeclaration),
		payslips:     make(map[string]*payslip.Payslip),
		byEmployee:   make(map[string][]string),
	}
}

func (m *Memory) SavePolicy(_ context.Context, record payslip.PolicyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[record.ID] = record
	return nil
}

func (m *Memory) GetPolicy(_ context.Context, id string) (*payslip.PolicyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.policies[id]
	if !ok {
		return nil, payslip.ErrNotFound
	}
	return &record, nil
}

func (m *Memory) ListPolicies(_ context.Context) ([]payslip.PolicyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]payslip.PolicyRecord, 0, len(m.policies))
	for _, record := range m.policies {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *Memory) SaveEmployee(_ context.Context, employee payslip.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[employee.ID] = employee
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*payslip.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employee, ok := m.employees[id]
	if !ok {
		return nil, payslip.ErrNotFound
	}
	return &employee, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payslip.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	employees := make([]payslip.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		employees = append(employees, employee)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	return employees, nil
}

func (m *Memory) SaveDeclaration(_ context.Context, employeeID, fiscalYear string, dec tax.ITDeclaration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declarations[declKey{employeeID, fiscalYear}] = dec
	return nil
}

func (m *Memory) GetDeclaration(_ context.Context, employeeID, fiscalYear string) (*tax.ITDeclaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dec, ok := m.declarations[declKey{employeeID, fiscalYear}]
	if !ok {
		return nil, payslip.ErrNotFound
	}
	return &dec, nil
}

func (m *Memory) SavePayslip(_ context.Context, slip *payslip.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *slip
	m.payslips[slip.ID] = &copied
	m.byEmployee[slip.EmployeeID] = append(m.byEmployee[slip.EmployeeID], slip.ID)
	return nil
}

func (m *Memory) GetPayslip(_ context.Context, id string) (*payslip.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slip, ok := m.payslips[id]
	if !ok {
		return nil, payslip.ErrNotFound
	}
	copied := *slip
	return &copied, nil
}

func (m *Memory) ListPayslips(_ context.Context, employeeID string) ([]*payslip.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var slips []*payslip.Payslip
	for _, id := range m.byEmployee[employeeID] {
		copied := *m.payslips[id]
		slips = append(slips, &copied)
	}
	return slips, nil
}

func (m *Memory) History(_ context.Context, employeeID string, period fiscal.Period) ([]fiscal.PayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []fiscal.PayRecord
	for _, id := range m.byEmployee[employeeID] {
		record := m.payslips[id].Record()
		if record.InPeriod(period) {
			records = append(records, record)
		}
	}
	return records, nil
}
