package template

import "fmt"

// AddNetwork renders the network construct: a VPC with public subnets, an
// internet gateway and a shared public route table. Subnets are spread over
// availability zones by index.
func AddNetwork(t *Template, cfg *NetworkConfig, environment string) error {
	err := t.AddResource("VPC", Resource{
		Type: "AWS::EC2::VPC",
		Properties: map[string]any{
			"CidrBlock":          stringOr(cfg.VPC.CIDR, "10.0.0.0/16"),
			"EnableDnsSupport":   true,
			"EnableDnsHostnames": true,
			"Tags": []any{
				map[string]any{"Key": "Name", "Value": Sub("${AWS::StackName}-vpc")},
				map[string]any{"Key": "Environment", "Value": environment},
			},
		},
	})
	if err != nil {
		return err
	}

	err = t.AddResource("InternetGateway", Resource{
		Type: "AWS::EC2::InternetGateway",
		Properties: map[string]any{
			"Tags": []any{
				map[string]any{"Key": "Name", "Value": Sub("${AWS::StackName}-igw")},
			},
		},
	})
	if err != nil {
		return err
	}

	err = t.AddResource("GatewayAttachment", Resource{
		Type: "AWS::EC2::VPCGatewayAttachment",
		Properties: map[string]any{
			"VpcId":             Ref("VPC"),
			"InternetGatewayId": Ref("InternetGateway"),
		},
	})
	if err != nil {
		return err
	}

	err = t.AddResource("PublicRouteTable", Resource{
		Type: "AWS::EC2::RouteTable",
		Properties: map[string]any{
			"VpcId": Ref("VPC"),
		},
	})
	if err != nil {
		return err
	}

	err = t.AddResource("PublicRoute", Resource{
		Type: "AWS::EC2::Route",
		Properties: map[string]any{
			"RouteTableId":         Ref("PublicRouteTable"),
			"DestinationCidrBlock": "0.0.0.0/0",
			"GatewayId":            Ref("InternetGateway"),
		},
		DependsOn: []string{"GatewayAttachment"},
	})
	if err != nil {
		return err
	}

	for i, cidr := range cfg.VPC.PublicSubnets {
		subnetID := fmt.Sprintf("PublicSubnet%d", i+1)
		err = t.AddResource(subnetID, Resource{
			Type: "AWS::EC2::Subnet",
			Properties: map[string]any{
				"VpcId":               Ref("VPC"),
				"CidrBlock":           cidr,
				"MapPublicIpOnLaunch": true,
				"AvailabilityZone": map[string]any{
					"Fn::Select": []any{i, map[string]any{"Fn::GetAZs": ""}},
				},
			},
		})
		if err != nil {
			return err
		}
		err = t.AddResource(subnetID+"RouteAssociation", Resource{
			Type: "AWS::EC2::SubnetRouteTableAssociation",
			Properties: map[string]any{
				"SubnetId":     Ref(subnetID),
				"RouteTableId": Ref("PublicRouteTable"),
			},
		})
		if err != nil {
			return err
		}
		t.ExportOutput(subnetID+"Id", fmt.Sprintf("public subnet %d id", i+1), Ref(subnetID), fmt.Sprintf("public-subnet-%d", i+1))
	}

	t.ExportOutput("VPCId", "VPC id", Ref("VPC"), "vpc-id")
	return nil
}
