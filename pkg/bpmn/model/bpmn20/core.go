package bpmn20

import "encoding/xml"

// Namespace is the BPMN 2.0 model namespace. A document without a process
// element in this namespace is not a workflow definition.
const Namespace = "http://www.omg.org/spec/BPMN/20100524/MODEL"

type TDefinitions struct {
	XMLName         xml.Name  `xml:"definitions"`
	Id              string    `xml:"id,attr"`
	Name            string    `xml:"name,attr"`
	TargetNamespace string    `xml:"targetNamespace,attr"`
	Process         *TProcess `xml:"http://www.omg.org/spec/BPMN/20100524/MODEL process"`
}

type TProcess struct {
	Id           string `xml:"id,attr"`
	Name         string `xml:"name,attr"`
	IsExecutable bool   `xml:"isExecutable,attr"`

	// FlowElements collects every child element in document order;
	// classification by local element name happens in the parser.
	FlowElements []TFlowElement `xml:",any"`
}

type TFlowElement struct {
	XMLName             xml.Name
	Id                  string        `xml:"id,attr"`
	Name                string        `xml:"name,attr"`
	SourceRef           string        `xml:"sourceRef,attr"`
	TargetRef           string        `xml:"targetRef,attr"`
	ConditionExpression []TExpression `xml:"conditionExpression"`
}

type TExpression struct {
	Text string `xml:",chardata"`
}
