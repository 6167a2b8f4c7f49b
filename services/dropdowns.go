package services

// ValueTypeOptions lists the value types offered when defining a column.
var ValueTypeOptions = []ValueType{ValueText, ValueNumber, ValueDate}

// CalculationOptions lists the calculations offered for number columns.
var CalculationOptions = []CalculationType{CalcNone, CalcSum, CalcAverage, CalcMin, CalcMax, CalcCustom}

// MoveOptions lists the accepted values of a column move direction.
var MoveOptions = []string{"left", "right"}
